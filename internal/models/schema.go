package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// TableName is the single table (or collection) holding vendor records.
const TableName = "vendordetails"

// Key field of a vendor record. The PAN is immutable once created.
const (
	KeyName   = "PAN"
	KeyColumn = "pan"
	KeySize   = 20
)

// ErrInvalidValue is returned when a payload field is not a scalar.
var ErrInvalidValue = errors.New("invalid field value")

// Field describes one optional vendor attribute: its payload key, its column,
// the column width, and whether create requires the key to be present.
type Field struct {
	Name     string
	Column   string
	Size     int
	Required bool

	ref func(v *Vendor) **string
}

// Get returns the field's current value on v.
func (f Field) Get(v *Vendor) *string { return *f.ref(v) }

// Set overwrites the field's value on v.
func (f Field) Set(v *Vendor, s *string) { *f.ref(v) = s }

// Fields lists every non-key attribute in column order. Store DDL, column
// lists, payload decoding and required-field checks all derive from it.
var Fields = []Field{
	{Name: "Legal_Name", Column: "legal_name", Size: 100, Required: true, ref: func(v *Vendor) **string { return &v.LegalName }},
	{Name: "Business_Type", Column: "business_type", Size: 50, Required: true, ref: func(v *Vendor) **string { return &v.BusinessType }},
	{Name: "Registered_Address", Column: "registered_address", Size: 200, Required: true, ref: func(v *Vendor) **string { return &v.RegisteredAddress }},
	{Name: "Communication_Address", Column: "communication_address", Size: 200, Required: true, ref: func(v *Vendor) **string { return &v.CommunicationAddress }},
	{Name: "Email", Column: "email", Size: 100, Required: true, ref: func(v *Vendor) **string { return &v.Email }},
	{Name: "Phone_Number", Column: "phone_number", Size: 20, Required: true, ref: func(v *Vendor) **string { return &v.PhoneNumber }},
	{Name: "GSTIN", Column: "gstin", Size: 20, ref: func(v *Vendor) **string { return &v.GSTIN }},
	{Name: "CIN", Column: "cin", Size: 20, ref: func(v *Vendor) **string { return &v.CIN }},
	{Name: "Udyam_ID", Column: "udyam_id", Size: 50, ref: func(v *Vendor) **string { return &v.UdyamID }},
	{Name: "IEC_Code", Column: "iec_code", Size: 50, ref: func(v *Vendor) **string { return &v.IECCode }},
	{Name: "TAN", Column: "tan", Size: 20, ref: func(v *Vendor) **string { return &v.TAN }},
	{Name: "Bank_Name", Column: "bank_name", Size: 50, ref: func(v *Vendor) **string { return &v.BankName }},
	{Name: "Branch", Column: "branch", Size: 50, ref: func(v *Vendor) **string { return &v.Branch }},
	{Name: "IFSC_Code", Column: "ifsc_code", Size: 20, ref: func(v *Vendor) **string { return &v.IFSCCode }},
	{Name: "Account_Verification", Column: "account_verification", Size: 50, ref: func(v *Vendor) **string { return &v.AccountVerification }},
	{Name: "GSTIN_Status", Column: "gstin_status", Size: 50, ref: func(v *Vendor) **string { return &v.GSTINStatus }},
	{Name: "PAN_Status", Column: "pan_status", Size: 50, ref: func(v *Vendor) **string { return &v.PANStatus }},
	{Name: "Name_Match", Column: "name_match", Size: 50, ref: func(v *Vendor) **string { return &v.NameMatch }},
	{Name: "PAN_Card", Column: "pan_card", Size: 100, ref: func(v *Vendor) **string { return &v.PANCard }},
	{Name: "GST_Certificate", Column: "gst_certificate", Size: 100, ref: func(v *Vendor) **string { return &v.GSTCertificate }},
	{Name: "MSME_Certificate", Column: "msme_certificate", Size: 100, ref: func(v *Vendor) **string { return &v.MSMECertificate }},
	{Name: "Incorporation_Deed", Column: "incorporation_deed", Size: 100, ref: func(v *Vendor) **string { return &v.IncorporationDeed }},
	{Name: "Signature", Column: "signature", Size: 100, ref: func(v *Vendor) **string { return &v.Signature }},
	{Name: "Bank_Proof", Column: "bank_proof", Size: 100, ref: func(v *Vendor) **string { return &v.BankProof }},
	{Name: "Cancelled_Cheque", Column: "cancelled_cheque", Size: 100, ref: func(v *Vendor) **string { return &v.CancelledCheque }},
	{Name: "Address_Proof", Column: "address_proof", Size: 100, ref: func(v *Vendor) **string { return &v.AddressProof }},
	{Name: "City", Column: "city", Size: 50, ref: func(v *Vendor) **string { return &v.City }},
	{Name: "State", Column: "state", Size: 50, ref: func(v *Vendor) **string { return &v.State }},
	{Name: "Country", Column: "country", Size: 50, ref: func(v *Vendor) **string { return &v.Country }},
	{Name: "Pincode", Column: "pincode", Size: 10, ref: func(v *Vendor) **string { return &v.Pincode }},
	{Name: "Photo", Column: "photo", Size: 100, ref: func(v *Vendor) **string { return &v.Photo }},
	{Name: "Vendor_Name", Column: "vendor_name", Size: 100, ref: func(v *Vendor) **string { return &v.VendorName }},
	{Name: "Contact_Person_Designation", Column: "contact_person_designation", Size: 50, ref: func(v *Vendor) **string { return &v.ContactPersonDesignation }},
}

// fieldsByName is the update allow-list, built once.
var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// LookupField returns the updatable field registered under a payload key.
// The key field is not updatable and is never returned.
func LookupField(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// RequiredFields returns the payload keys a create must carry, key first.
func RequiredFields() []string {
	out := []string{KeyName}
	for _, f := range Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// MissingRequired reports which required keys are absent from payload.
// Only presence is checked; null or empty values count as present.
func MissingRequired(payload map[string]any) []string {
	var missing []string
	for _, name := range RequiredFields() {
		if _, ok := payload[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Columns returns every column in table order, key first.
func Columns() []string {
	cols := make([]string, 0, len(Fields)+1)
	cols = append(cols, KeyColumn)
	for _, f := range Fields {
		cols = append(cols, f.Column)
	}
	return cols
}

// ScanTargets returns pointers matching Columns() for rows.Scan.
func ScanTargets(v *Vendor) []any {
	dest := make([]any, 0, len(Fields)+1)
	dest = append(dest, &v.PAN)
	for _, f := range Fields {
		dest = append(dest, f.ref(v))
	}
	return dest
}

// Values returns v's values matching Columns() for an insert.
func Values(v *Vendor) []any {
	args := make([]any, 0, len(Fields)+1)
	args = append(args, v.PAN)
	for _, f := range Fields {
		if s := f.Get(v); s != nil {
			args = append(args, *s)
		} else {
			args = append(args, nil)
		}
	}
	return args
}

// VendorFromPayload builds a record from a create payload. Unknown keys are
// dropped. A null PAN yields an empty key, which the store rejects.
func VendorFromPayload(payload map[string]any) (*Vendor, error) {
	v := &Vendor{}
	if raw, ok := payload[KeyName]; ok {
		s, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", KeyName, err)
		}
		if s != nil {
			v.PAN = *s
		}
	}
	for _, f := range Fields {
		raw, ok := payload[f.Name]
		if !ok {
			continue
		}
		s, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		f.Set(v, s)
	}
	return v, nil
}

// PatchFromPayload keeps only the updatable keys of an update payload.
// A nil value in the result clears that column.
func PatchFromPayload(payload map[string]any) (map[string]*string, error) {
	patch := make(map[string]*string, len(payload))
	for name, raw := range payload {
		if _, ok := LookupField(name); !ok {
			continue
		}
		s, err := scalarString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		patch[name] = s
	}
	return patch, nil
}

// scalarString flattens a decoded JSON value into the stored text form.
func scalarString(raw any) (*string, error) {
	var s string
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case string:
		s = val
	case json.Number:
		s = val.String()
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(val)
	default:
		return nil, ErrInvalidValue
	}
	return &s, nil
}
