package models

// Vendor is one row of the vendordetails table. Every attribute other than
// PAN is optional and serialized as null when unset.
type Vendor struct {
	PAN string `json:"PAN" bson:"_id"`

	LegalName                *string `json:"Legal_Name" bson:"Legal_Name"`
	VendorName               *string `json:"Vendor_Name" bson:"Vendor_Name"`
	BusinessType             *string `json:"Business_Type" bson:"Business_Type"`
	ContactPersonDesignation *string `json:"Contact_Person_Designation" bson:"Contact_Person_Designation"`

	RegisteredAddress    *string `json:"Registered_Address" bson:"Registered_Address"`
	CommunicationAddress *string `json:"Communication_Address" bson:"Communication_Address"`
	City                 *string `json:"City" bson:"City"`
	State                *string `json:"State" bson:"State"`
	Country              *string `json:"Country" bson:"Country"`
	Pincode              *string `json:"Pincode" bson:"Pincode"`

	Email       *string `json:"Email" bson:"Email"`
	PhoneNumber *string `json:"Phone_Number" bson:"Phone_Number"`

	GSTIN       *string `json:"GSTIN" bson:"GSTIN"`
	CIN         *string `json:"CIN" bson:"CIN"`
	UdyamID     *string `json:"Udyam_ID" bson:"Udyam_ID"`
	IECCode     *string `json:"IEC_Code" bson:"IEC_Code"`
	TAN         *string `json:"TAN" bson:"TAN"`
	GSTINStatus *string `json:"GSTIN_Status" bson:"GSTIN_Status"`
	PANStatus   *string `json:"PAN_Status" bson:"PAN_Status"`
	NameMatch   *string `json:"Name_Match" bson:"Name_Match"`

	BankName            *string `json:"Bank_Name" bson:"Bank_Name"`
	Branch              *string `json:"Branch" bson:"Branch"`
	IFSCCode            *string `json:"IFSC_Code" bson:"IFSC_Code"`
	AccountVerification *string `json:"Account_Verification" bson:"Account_Verification"`

	// Opaque document references (storage paths or upload IDs).
	PANCard           *string `json:"PAN_Card" bson:"PAN_Card"`
	GSTCertificate    *string `json:"GST_Certificate" bson:"GST_Certificate"`
	MSMECertificate   *string `json:"MSME_Certificate" bson:"MSME_Certificate"`
	IncorporationDeed *string `json:"Incorporation_Deed" bson:"Incorporation_Deed"`
	Signature         *string `json:"Signature" bson:"Signature"`
	BankProof         *string `json:"Bank_Proof" bson:"Bank_Proof"`
	CancelledCheque   *string `json:"Cancelled_Cheque" bson:"Cancelled_Cheque"`
	AddressProof      *string `json:"Address_Proof" bson:"Address_Proof"`
	Photo             *string `json:"Photo" bson:"Photo"`
}
