package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/phishgraph/phishgraph/internal/session"
)

// Entity is a persisted record. Every entity is protected: its properties
// are only readable when the active session allows it.
type Entity interface {
	Kind() Kind
	// Identity returns the local id (int64 or string).
	Identity() any
	HasReadAccess(s session.Session, property string) bool
}

func (*AlertSubscription) Kind() Kind  { return KindAlertSubscription }
func (*Campaign) Kind() Kind           { return KindCampaign }
func (*CampaignType) Kind() Kind       { return KindCampaignType }
func (*Company) Kind() Kind            { return KindCompany }
func (*CompanyDepartment) Kind() Kind  { return KindCompanyDepartment }
func (*Credential) Kind() Kind         { return KindCredential }
func (*DeaddropConnection) Kind() Kind { return KindDeaddropConnection }
func (*DeaddropDeployment) Kind() Kind { return KindDeaddropDeployment }
func (*Industry) Kind() Kind           { return KindIndustry }
func (*LandingPage) Kind() Kind        { return KindLandingPage }
func (*Message) Kind() Kind            { return KindMessage }
func (*User) Kind() Kind               { return KindUser }
func (*Visit) Kind() Kind              { return KindVisit }

func (e *AlertSubscription) Identity() any  { return e.ID }
func (e *Campaign) Identity() any           { return e.ID }
func (e *CampaignType) Identity() any       { return e.ID }
func (e *Company) Identity() any            { return e.ID }
func (e *CompanyDepartment) Identity() any  { return e.ID }
func (e *Credential) Identity() any         { return e.ID }
func (e *DeaddropConnection) Identity() any { return e.ID }
func (e *DeaddropDeployment) Identity() any { return e.ID }
func (e *Industry) Identity() any           { return e.ID }
func (e *LandingPage) Identity() any        { return e.ID }
func (e *Message) Identity() any            { return e.ID }
func (e *User) Identity() any               { return e.ID }
func (e *Visit) Identity() any              { return e.ID }

func (e *AlertSubscription) HasReadAccess(s session.Session, property string) bool {
	// subscriptions are private to their owner
	if !s.IsAdmin() && s.UserID() != e.UserID {
		return false
	}
	return s.CanRead(string(e.Kind()), property)
}

func (e *Campaign) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *CampaignType) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *Company) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *CompanyDepartment) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *Credential) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *DeaddropConnection) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *DeaddropDeployment) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *Industry) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *LandingPage) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *Message) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

func (e *User) HasReadAccess(s session.Session, property string) bool {
	// otp secrets are only visible to the user they belong to
	if property == "otp_secret" && s.UserID() != e.ID {
		return false
	}
	return s.CanRead(string(e.Kind()), property)
}

func (e *Visit) HasReadAccess(s session.Session, property string) bool {
	return s.CanRead(string(e.Kind()), property)
}

// Column describes one persisted property of an entity.
type Column struct {
	Name  string
	Index int
	Type  reflect.Type
}

type table struct {
	typ     reflect.Type
	columns []Column
	byName  map[string]int
}

var tables = map[Kind]*table{}

// Kinds lists every entity kind in a fixed order.
var Kinds = []Kind{
	KindAlertSubscription,
	KindCampaign,
	KindCampaignType,
	KindCompany,
	KindCompanyDepartment,
	KindCredential,
	KindDeaddropConnection,
	KindDeaddropDeployment,
	KindIndustry,
	KindLandingPage,
	KindMessage,
	KindUser,
	KindVisit,
}

func init() {
	for _, e := range []Entity{
		&AlertSubscription{}, &Campaign{}, &CampaignType{}, &Company{},
		&CompanyDepartment{}, &Credential{}, &DeaddropConnection{},
		&DeaddropDeployment{}, &Industry{}, &LandingPage{}, &Message{},
		&User{}, &Visit{},
	} {
		typ := reflect.TypeOf(e).Elem()
		t := &table{typ: typ, byName: map[string]int{}}
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				continue
			}
			t.byName[name] = len(t.columns)
			t.columns = append(t.columns, Column{Name: name, Index: i, Type: f.Type})
		}
		tables[e.Kind()] = t
	}
}

// Columns returns the persisted columns of kind in declaration order.
func Columns(kind Kind) []Column {
	t, ok := tables[kind]
	if !ok {
		return nil
	}
	return t.columns
}

// New allocates an empty entity of kind.
func New(kind Kind) (Entity, error) {
	t, ok := tables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown entity kind %q", kind)
	}
	return reflect.New(t.typ).Interface().(Entity), nil
}

// Value returns the value of column on e. Nullable columns are returned as
// typed pointers; callers treat nil pointers as null.
func Value(e Entity, column string) (any, bool) {
	t, ok := tables[e.Kind()]
	if !ok {
		return nil, false
	}
	i, ok := t.byName[column]
	if !ok {
		return nil, false
	}
	rv := reflect.ValueOf(e).Elem().Field(t.columns[i].Index)
	return rv.Interface(), true
}

// Matches reports whether every column in filter equals the entity's value.
// Integer types are compared numerically and pointers are dereferenced, so a
// filter built from query arguments matches typed model columns.
func Matches(e Entity, filter map[string]any) bool {
	for column, want := range filter {
		got, ok := Value(e, column)
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

func equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	return a == b
}

func normalize(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Invalid:
		return nil
	}
	if rv.Comparable() {
		return rv.Interface()
	}
	return fmt.Sprint(rv.Interface())
}
