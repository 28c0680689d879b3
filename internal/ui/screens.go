package ui

import (
	"strconv"
	"strings"

	"github.com/clinicdesk/clinicdesk/internal/domain/auditlog"
	"github.com/clinicdesk/clinicdesk/internal/domain/billing"
	"github.com/clinicdesk/clinicdesk/internal/domain/encounter"
	"github.com/clinicdesk/clinicdesk/internal/domain/identity"
	"github.com/clinicdesk/clinicdesk/internal/store"
	"github.com/clinicdesk/clinicdesk/pkg/jsontime"
)

// Unknown stands in for a name that cannot be resolved.
const Unknown = "Unknown"

type (
	PatientStore = store.Store[identity.Patient, identity.PatientInput]
	DoctorStore  = store.Store[identity.Doctor, identity.DoctorInput]
	VisitStore   = store.Store[encounter.Visit, encounter.VisitInput]
	FeeStore     = store.Store[billing.Fee, billing.FeeInput]
	LogStore     = store.Store[auditlog.ActivityLog, auditlog.ActivityLogInput]
)

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func PatientForm() Form[identity.PatientInput] {
	return Form[identity.PatientInput]{
		Text("first-name", "first name", func(p *identity.PatientInput) *string { return &p.FirstName }),
		Text("last-name", "last name", func(p *identity.PatientInput) *string { return &p.LastName }),
		OptionalDate("date-of-birth", "date of birth (YYYY-MM-DD)", func(p *identity.PatientInput) **jsontime.Time { return &p.DateOfBirth }),
		Text("gender", "one of "+strings.Join(identity.Genders, ", "), func(p *identity.PatientInput) *string { return &p.Gender }),
		Text("phone", "phone number", func(p *identity.PatientInput) *string { return &p.Phone }),
		Text("email", "email address", func(p *identity.PatientInput) *string { return &p.Email }),
		Text("address", "postal address", func(p *identity.PatientInput) *string { return &p.Address }),
	}
}

func PatientDefinition() Definition[identity.Patient, identity.PatientInput] {
	return Definition[identity.Patient, identity.PatientInput]{
		Name: "Patients",
		Noun: "Patient",
		Columns: []Column[identity.Patient]{
			{Header: "ID", Value: func(p identity.Patient) string { return id(p.PatientID) }},
			{Header: "Name", Value: identity.Patient.FullName},
			{Header: "Date of Birth", Value: func(p identity.Patient) string { return Day(p.DateOfBirth) }},
			{Header: "Gender", Value: func(p identity.Patient) string { return p.Gender }},
			{Header: "Phone", Value: func(p identity.Patient) string { return p.Phone }},
			{Header: "Email", Value: func(p identity.Patient) string { return p.Email }},
		},
		Form:  PatientForm(),
		Input: identity.Patient.Input,
	}
}

func DoctorForm() Form[identity.DoctorInput] {
	return Form[identity.DoctorInput]{
		Text("first-name", "first name", func(d *identity.DoctorInput) *string { return &d.FirstName }),
		Text("last-name", "last name", func(d *identity.DoctorInput) *string { return &d.LastName }),
		Text("specialty", "medical specialty", func(d *identity.DoctorInput) *string { return &d.Specialty }),
		Text("phone", "phone number", func(d *identity.DoctorInput) *string { return &d.Phone }),
		Text("email", "email address", func(d *identity.DoctorInput) *string { return &d.Email }),
	}
}

func DoctorDefinition() Definition[identity.Doctor, identity.DoctorInput] {
	return Definition[identity.Doctor, identity.DoctorInput]{
		Name: "Doctors",
		Noun: "Doctor",
		Columns: []Column[identity.Doctor]{
			{Header: "ID", Value: func(d identity.Doctor) string { return id(d.DoctorID) }},
			{Header: "Name", Value: identity.Doctor.FullName},
			{Header: "Specialty", Value: func(d identity.Doctor) string { return d.Specialty }},
			{Header: "Phone", Value: func(d identity.Doctor) string { return d.Phone }},
			{Header: "Email", Value: func(d identity.Doctor) string { return d.Email }},
		},
		Form:  DoctorForm(),
		Input: identity.Doctor.Input,
	}
}

func VisitForm() Form[encounter.VisitInput] {
	return Form[encounter.VisitInput]{
		ID("patient-id", "patient id", func(v *encounter.VisitInput) *int64 { return &v.PatientID }),
		ID("doctor-id", "doctor id", func(v *encounter.VisitInput) *int64 { return &v.DoctorID }),
		Timestamp("visit-date", "visit date and time (YYYY-MM-DDTHH:MM)", func(v *encounter.VisitInput) *jsontime.Time { return &v.VisitDate }),
		Text("status", "one of "+strings.Join(encounter.Statuses(), ", "), func(v *encounter.VisitInput) *string { return &v.Status }),
		Text("notes", "free-text notes", func(v *encounter.VisitInput) *string { return &v.Notes }),
	}
}

// VisitDefinition resolves patient and doctor names from the loaded patient
// and doctor lists, then from the names the server sent, then Unknown.
func VisitDefinition(patients *PatientStore, doctors *DoctorStore) Definition[encounter.Visit, encounter.VisitInput] {
	patientName := func(v encounter.Visit) string {
		if patients != nil {
			if p, ok := patients.Find(v.PatientID); ok {
				return p.FullName()
			}
		}
		if v.PatientName != "" {
			return v.PatientName
		}
		return Unknown
	}
	doctorName := func(v encounter.Visit) string {
		if doctors != nil {
			if d, ok := doctors.Find(v.DoctorID); ok {
				return d.FullName()
			}
		}
		if v.DoctorName != "" {
			return v.DoctorName
		}
		return Unknown
	}

	return Definition[encounter.Visit, encounter.VisitInput]{
		Name: "Visits",
		Noun: "Visit",
		Columns: []Column[encounter.Visit]{
			{Header: "ID", Value: func(v encounter.Visit) string { return id(v.VisitID) }},
			{Header: "Patient", Value: patientName},
			{Header: "Doctor", Value: doctorName},
			{Header: "Visit Date", Value: func(v encounter.Visit) string { return Short(v.VisitDate) }},
			{Header: "Status", Value: func(v encounter.Visit) string { return v.Status }},
			{Header: "Notes", Value: func(v encounter.Visit) string { return v.Notes }},
		},
		Form:  VisitForm(),
		Input: encounter.Visit.Input,
	}
}

func FeeForm() Form[billing.FeeInput] {
	return Form[billing.FeeInput]{
		Text("service-name", "name of the billed service", func(f *billing.FeeInput) *string { return &f.ServiceName }),
		Amount("amount", "amount charged", func(f *billing.FeeInput) *float64 { return &f.Amount }),
	}
}

func FeeDefinition() Definition[billing.Fee, billing.FeeInput] {
	return Definition[billing.Fee, billing.FeeInput]{
		Name: "Fees",
		Noun: "Fee",
		Columns: []Column[billing.Fee]{
			{Header: "ID", Value: func(f billing.Fee) string { return id(f.FeeID) }},
			{Header: "Service Name", Value: func(f billing.Fee) string { return f.ServiceName }},
			{Header: "Amount", Value: func(f billing.Fee) string { return strconv.FormatFloat(f.Amount, 'f', 2, 64) }},
		},
		Form:  FeeForm(),
		Input: billing.Fee.Input,
	}
}

// LogDefinition is read-only.
func LogDefinition() Definition[auditlog.ActivityLog, auditlog.ActivityLogInput] {
	return Definition[auditlog.ActivityLog, auditlog.ActivityLogInput]{
		Name:  "Activity Logs",
		Title: "Activity Logs",
		Noun:  "Activity log",
		Columns: []Column[auditlog.ActivityLog]{
			{Header: "ID", Value: func(l auditlog.ActivityLog) string { return id(l.LogID) }},
			{Header: "User", Value: func(l auditlog.ActivityLog) string {
				if l.Username == "" {
					return Unknown
				}
				return l.Username
			}},
			{Header: "Action", Value: func(l auditlog.ActivityLog) string { return l.Action }},
			{Header: "Timestamp", Value: func(l auditlog.ActivityLog) string { return Short(l.Timestamp) }},
			{Header: "Details", Value: func(l auditlog.ActivityLog) string { return l.Details }},
		},
		Input: func(l auditlog.ActivityLog) auditlog.ActivityLogInput {
			return auditlog.ActivityLogInput{Action: l.Action, Details: l.Details}
		},
	}
}
