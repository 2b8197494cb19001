package intake

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-cli/internal/model"
)

// ProductOptions are the product interests offered by the entry form.
var ProductOptions = []string{
	"Life Insurance",
	"Health Insurance",
	"Motor Insurance",
	"Investment",
	"Mutual Funds",
	"Fixed Deposit",
	"Personal Loan",
	"Home Loan",
	"Credit Card",
	"Other",
}

// SourceOptions are the lead sources offered by the entry form.
var SourceOptions = []string{
	"Referral",
	"Website",
	"Social Media",
	"Cold Call",
	"Exhibition",
	"Advertisement",
	"Existing Customer",
	"Partner",
	"Other",
}

// RequiredFieldsMessage is reported when name or contact is blank.
const RequiredFieldsMessage = "Name and Contact are required fields"

// Entry is one manually entered lead.
type Entry struct {
	Name            string `json:"name" validate:"required,max=200"`
	Contact         string `json:"contact" validate:"required,contact"`
	Location        string `json:"location" validate:"max=200"`
	ProductInterest string `json:"product_interest" validate:"max=200"`
	LastContactDate string `json:"last_contact_date"`
	LeadSource      string `json:"lead_source" validate:"max=200"`
}

// Batch wraps the entry in a one-record batch over the full schema.
func (e Entry) Batch() *model.Batch {
	return model.NewBatch(model.Lead{
		Name:            e.Name,
		Contact:         e.Contact,
		Location:        e.Location,
		ProductInterest: e.ProductInterest,
		LastContactDate: e.LastContactDate,
		LeadSource:      e.LeadSource,
	})
}

// FormError reports entry fields that failed validation.
type FormError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func (e *FormError) Error() string {
	return e.Message
}

// EntryValidator checks manual entries. A contact is accepted when it holds
// a run of MinContactDigits digits, is an e-mail address, or is a valid phone
// number in the default region.
type EntryValidator struct {
	v      *validator.Validate
	region string
}

// NewEntryValidator builds a validator using region for numbers written
// without a country code.
func NewEntryValidator(region string) *EntryValidator {
	ev := &EntryValidator{
		v:      validator.New(validator.WithRequiredStructEnabled()),
		region: strings.ToUpper(strings.TrimSpace(region)),
	}
	_ = ev.v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return ev.validContact(fl.Field().String())
	})
	ev.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return ev
}

// Validate trims the entry and checks it, returning the cleaned entry.
func (ev *EntryValidator) Validate(e Entry) (Entry, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Contact = strings.TrimSpace(e.Contact)
	e.Location = strings.TrimSpace(e.Location)
	e.ProductInterest = strings.TrimSpace(e.ProductInterest)
	e.LastContactDate = strings.TrimSpace(e.LastContactDate)
	e.LeadSource = strings.TrimSpace(e.LeadSource)

	if e.Name == "" || e.Contact == "" {
		return e, &FormError{
			Message: RequiredFieldsMessage,
			Fields:  requiredFields(e),
		}
	}

	err := ev.v.Struct(e)
	if err == nil {
		return e, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return e, eris.Wrap(err, "intake: validate entry")
	}

	fe := &FormError{Message: "Invalid lead entry", Fields: make(map[string]string, len(verrs))}
	for _, fieldErr := range verrs {
		fe.Fields[fieldErr.Field()] = describe(fieldErr)
	}
	return e, fe
}

// NormalizePhone returns the E.164 form of a phone contact, or "" when the
// contact is not a phone number.
func (ev *EntryValidator) NormalizePhone(contact string) string {
	num, err := phonenumbers.Parse(strings.TrimSpace(contact), ev.region)
	if err != nil || !phonenumbers.IsPossibleNumber(num) || !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func (ev *EntryValidator) validContact(s string) bool {
	s = strings.TrimSpace(s)
	// Anything an uploaded batch would accept is accepted here too.
	if ValidContact(s) {
		return true
	}
	if strings.Contains(s, "@") {
		return ev.v.Var(s, "email") == nil
	}
	return ev.NormalizePhone(s) != ""
}

func requiredFields(e Entry) map[string]string {
	fields := make(map[string]string, 2)
	if e.Name == "" {
		fields["name"] = "required"
	}
	if e.Contact == "" {
		fields["contact"] = "required"
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "contact":
		return "must be a phone number or e-mail address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "invalid"
	}
}
