package graph

import (
	"reflect"
	"strings"
	"time"

	"github.com/phishgraph/phishgraph/internal/model"
	"github.com/phishgraph/phishgraph/internal/schema"
)

// relation links an entity to other entities through a foreign-key column.
// The name doubles as the property checked by the authorization interceptor.
type relation struct {
	name   string
	kind   model.Kind
	column string
}

// entity describes how one model kind is surfaced.
type entity struct {
	kind        model.Kind
	typeName    string
	description string
	// children are one-to-many relationships exposed as connections: every
	// entity of kind whose column equals the parent's id.
	children []relation
	// parents are many-to-one relationships: the entity of kind whose id
	// equals the column on this entity.
	parents []relation
}

var entities = []entity{
	{
		kind:        model.KindAlertSubscription,
		typeName:    "AlertSubscription",
		description: "A user's subscription to the alerts of one campaign.",
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
			{"user", model.KindUser, "user_id"},
		},
	},
	{
		kind:        model.KindCampaign,
		typeName:    "Campaign",
		description: "A phishing campaign.",
		children: []relation{
			{"alert_subscriptions", model.KindAlertSubscription, "campaign_id"},
			{"credentials", model.KindCredential, "campaign_id"},
			{"deaddrop_connections", model.KindDeaddropConnection, "campaign_id"},
			{"deaddrop_deployments", model.KindDeaddropDeployment, "campaign_id"},
			{"landing_pages", model.KindLandingPage, "campaign_id"},
			{"messages", model.KindMessage, "campaign_id"},
			{"visits", model.KindVisit, "campaign_id"},
		},
		parents: []relation{
			{"campaign_type", model.KindCampaignType, "campaign_type_id"},
			{"company", model.KindCompany, "company_id"},
			{"user", model.KindUser, "user_id"},
		},
	},
	{
		kind:     model.KindCampaignType,
		typeName: "CampaignType",
		children: []relation{
			{"campaigns", model.KindCampaign, "campaign_type_id"},
		},
	},
	{
		kind:        model.KindCompany,
		typeName:    "Company",
		description: "A company targeted by campaigns.",
		children: []relation{
			{"campaigns", model.KindCampaign, "company_id"},
		},
		parents: []relation{
			{"industry", model.KindIndustry, "industry_id"},
		},
	},
	{
		kind:     model.KindCompanyDepartment,
		typeName: "CompanyDepartment",
		children: []relation{
			{"messages", model.KindMessage, "company_department_id"},
		},
	},
	{
		kind:        model.KindCredential,
		typeName:    "Credential",
		description: "Credentials submitted by a visitor.",
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
			{"message", model.KindMessage, "message_id"},
			{"visit", model.KindVisit, "visit_id"},
		},
	},
	{
		kind:     model.KindDeaddropConnection,
		typeName: "DeaddropConnection",
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
			{"deaddrop_deployment", model.KindDeaddropDeployment, "deployment_id"},
		},
	},
	{
		kind:     model.KindDeaddropDeployment,
		typeName: "DeaddropDeployment",
		children: []relation{
			{"deaddrop_connections", model.KindDeaddropConnection, "deployment_id"},
		},
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
		},
	},
	{
		kind:     model.KindIndustry,
		typeName: "Industry",
		children: []relation{
			{"companies", model.KindCompany, "industry_id"},
		},
	},
	{
		kind:     model.KindLandingPage,
		typeName: "LandingPage",
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
		},
	},
	{
		kind:        model.KindMessage,
		typeName:    "Message",
		description: "A message sent to one target.",
		children: []relation{
			{"credentials", model.KindCredential, "message_id"},
			{"visits", model.KindVisit, "message_id"},
		},
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
			{"company_department", model.KindCompanyDepartment, "company_department_id"},
		},
	},
	{
		kind:     model.KindUser,
		typeName: "User",
		children: []relation{
			{"alert_subscriptions", model.KindAlertSubscription, "user_id"},
			{"campaigns", model.KindCampaign, "user_id"},
		},
	},
	{
		kind:        model.KindVisit,
		typeName:    "Visit",
		description: "A visit to a landing page.",
		children: []relation{
			{"credentials", model.KindCredential, "visit_id"},
		},
		parents: []relation{
			{"campaign", model.KindCampaign, "campaign_id"},
			{"message", model.KindMessage, "message_id"},
			{"first_landing_page", model.KindLandingPage, "first_landing_page_id"},
		},
	},
}

// typeNames maps kinds to their object type.
var typeNames = func() map[model.Kind]string {
	m := make(map[model.Kind]string, len(entities))
	for _, e := range entities {
		m[e.kind] = e.typeName
	}
	return m
}()

// camelCase converts a snake_case column or relation name to a field name.
func camelCase(name string) string {
	parts := strings.Split(name, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// lowerFirst turns a type name into the matching single-lookup field name.
func lowerFirst(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

var timeType = reflect.TypeOf(time.Time{})

// columnType maps a model column to its GraphQL type. Every column is
// nullable so that a redacted value never violates the schema.
func columnType(col model.Column) *schema.TypeRef {
	if col.Name == "id" {
		return schema.NamedType("ID")
	}
	return goType(col.Type)
}

func goType(t reflect.Type) *schema.TypeRef {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return schema.NamedType(dateTimeScalar)
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return schema.NamedType("Int")
	case reflect.Float32, reflect.Float64:
		return schema.NamedType("Float")
	case reflect.Bool:
		return schema.NamedType("Boolean")
	case reflect.Slice:
		return schema.ListType(goType(t.Elem()))
	}
	return schema.NamedType("String")
}

// fields returns the column, relationship and extra fields of e.
func (e entity) fields() []*schema.Field {
	var out []*schema.Field
	for _, col := range model.Columns(e.kind) {
		out = append(out, schema.NewField(camelCase(col.Name), "", columnType(col)).SetProperty(col.Name))
	}
	for _, rel := range e.parents {
		out = append(out, schema.NewField(camelCase(rel.name), "", schema.NamedType(typeNames[rel.kind])).
			SetProperty(rel.name).
			SetResolver(resolveParent(rel)))
	}
	for _, rel := range e.children {
		out = append(out, schema.NewField(camelCase(rel.name), "", schema.ConnectionType(schema.NamedType(typeNames[rel.kind]))).
			SetProperty(rel.name).
			SetResolver(resolveChildren(rel)))
	}
	if e.kind == model.KindVisit {
		// The location is derived from the visitor address, so it is only
		// readable when the address is.
		out = append(out, schema.NewField("visitorGeoloc", "The location of the visitor address.", schema.NamedType(geoLocationType)).
			SetProperty("visitor_ip").
			SetResolver(resolveVisitorGeoloc))
	}
	return out
}

// idArgumentType is Int for integer keyed kinds and String otherwise.
func idArgumentType(kind model.Kind) *schema.TypeRef {
	for _, col := range model.Columns(kind) {
		if col.Name == "id" {
			return goType(col.Type)
		}
	}
	return schema.NamedType("String")
}
