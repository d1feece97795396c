// Package model declares the persisted entities of the object graph. Entities
// are plain records addressed by a stable id; relationships are foreign-key
// columns resolved through the store, never pointers.
package model

import "time"

// Kind names an entity collection. It matches the backing table name and is
// the key used by session access rules.
type Kind string

const (
	KindAlertSubscription  Kind = "alert_subscriptions"
	KindCampaign           Kind = "campaigns"
	KindCampaignType       Kind = "campaign_types"
	KindCompany            Kind = "companies"
	KindCompanyDepartment  Kind = "company_departments"
	KindCredential         Kind = "credentials"
	KindDeaddropConnection Kind = "deaddrop_connections"
	KindDeaddropDeployment Kind = "deaddrop_deployments"
	KindIndustry           Kind = "industries"
	KindLandingPage        Kind = "landing_pages"
	KindMessage            Kind = "messages"
	KindUser               Kind = "users"
	KindVisit              Kind = "visits"
)

type AlertSubscription struct {
	ID            int64      `yaml:"id"`
	UserID        string     `yaml:"user_id"`
	CampaignID    int64      `yaml:"campaign_id"`
	Type          string     `yaml:"type"`
	MuteTimestamp *time.Time `yaml:"mute_timestamp"`
}

type Campaign struct {
	ID                      int64      `yaml:"id"`
	Name                    string     `yaml:"name"`
	Description             *string    `yaml:"description"`
	UserID                  string     `yaml:"user_id"`
	Created                 time.Time  `yaml:"created"`
	RejectAfterCredentials  bool       `yaml:"reject_after_credentials"`
	Expiration              *time.Time `yaml:"expiration"`
	CampaignTypeID          *int64     `yaml:"campaign_type_id"`
	CompanyID               *int64     `yaml:"company_id"`
	CredentialRegexUsername *string    `yaml:"credential_regex_username"`
	CredentialRegexPassword *string    `yaml:"credential_regex_password"`
	CredentialRegexMFAToken *string    `yaml:"credential_regex_mfa_token"`
	MaxCredentials          *int64     `yaml:"max_credentials"`
}

type CampaignType struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type Company struct {
	ID              int64   `yaml:"id"`
	Name            string  `yaml:"name"`
	Description     *string `yaml:"description"`
	IndustryID      *int64  `yaml:"industry_id"`
	URLMain         *string `yaml:"url_main"`
	URLEmail        *string `yaml:"url_email"`
	URLRemoteAccess *string `yaml:"url_remote_access"`
}

type CompanyDepartment struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type Credential struct {
	ID             int64     `yaml:"id"`
	VisitID        string    `yaml:"visit_id"`
	MessageID      string    `yaml:"message_id"`
	CampaignID     int64     `yaml:"campaign_id"`
	Username       *string   `yaml:"username"`
	Password       *string   `yaml:"password"`
	MFAToken       *string   `yaml:"mfa_token"`
	Submitted      time.Time `yaml:"submitted"`
	RegexValidated *bool     `yaml:"regex_validated"`
}

type DeaddropConnection struct {
	ID               int64     `yaml:"id"`
	DeploymentID     string    `yaml:"deployment_id"`
	CampaignID       int64     `yaml:"campaign_id"`
	Count            int64     `yaml:"count"`
	IP               string    `yaml:"ip"`
	LocalUsername    *string   `yaml:"local_username"`
	LocalHostname    *string   `yaml:"local_hostname"`
	LocalIPAddresses *string   `yaml:"local_ip_addresses"`
	FirstVisit       time.Time `yaml:"first_visit"`
	LastVisit        time.Time `yaml:"last_visit"`
}

type DeaddropDeployment struct {
	ID          string  `yaml:"id"`
	CampaignID  int64   `yaml:"campaign_id"`
	Destination *string `yaml:"destination"`
}

type Industry struct {
	ID          int64   `yaml:"id"`
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type LandingPage struct {
	ID         int64  `yaml:"id"`
	CampaignID int64  `yaml:"campaign_id"`
	Hostname   string `yaml:"hostname"`
	Page       string `yaml:"page"`
}

type Message struct {
	ID                  string     `yaml:"id"`
	CampaignID          int64      `yaml:"campaign_id"`
	TargetEmail         string     `yaml:"target_email"`
	FirstName           *string    `yaml:"first_name"`
	LastName            *string    `yaml:"last_name"`
	Opened              *time.Time `yaml:"opened"`
	OpenerIP            *string    `yaml:"opener_ip"`
	OpenerUserAgent     *string    `yaml:"opener_user_agent"`
	Sent                time.Time  `yaml:"sent"`
	Trained             bool       `yaml:"trained"`
	CompanyDepartmentID *int64     `yaml:"company_department_id"`
	DeliveryStatus      *string    `yaml:"delivery_status"`
	DeliveryDetails     *string    `yaml:"delivery_details"`
	Testing             bool       `yaml:"testing"`
	Reported            *time.Time `yaml:"reported"`
}

type User struct {
	ID           string     `yaml:"id"`
	Name         *string    `yaml:"name"`
	Description  *string    `yaml:"description"`
	PhoneCarrier *string    `yaml:"phone_carrier"`
	PhoneNumber  *string    `yaml:"phone_number"`
	EmailAddress *string    `yaml:"email_address"`
	OTPSecret    *string    `yaml:"otp_secret"`
	AccessLevel  int64      `yaml:"access_level"`
	LastLogin    *time.Time `yaml:"last_login"`
	Expiration   *time.Time `yaml:"expiration"`
}

type Visit struct {
	ID                 string    `yaml:"id"`
	MessageID          string    `yaml:"message_id"`
	CampaignID         int64     `yaml:"campaign_id"`
	Count              int64     `yaml:"count"`
	VisitorIP          *string   `yaml:"visitor_ip"`
	VisitorDetails     *string   `yaml:"visitor_details"`
	FirstLandingPageID *int64    `yaml:"first_landing_page_id"`
	FirstVisit         time.Time `yaml:"first_visit"`
	LastVisit          time.Time `yaml:"last_visit"`
}
