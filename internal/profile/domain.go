// Package profile serves the per-role profile sub-records and pictures.
package profile

// CadetProfile joins a cadet account with its profile and unit.
type CadetProfile struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Contact          string  `json:"contact"`
	RegimentalNumber string  `json:"regimental_number"`
	DOB              *string `json:"dob"`
	Age              *int32  `json:"age"`
	MotherName       *string `json:"mother_name"`
	FatherName       *string `json:"father_name"`
	ParentPhone      *string `json:"parent_phone"`
	ParentEmail      *string `json:"parent_email"`
	Address          *string `json:"address"`
	Wing             *string `json:"wing"`
	Category         *string `json:"category"`
	UnitID           string  `json:"ano_id"`
	UnitAdminName    *string `json:"ano_name"`
	UnitType         *string `json:"type"`
	CurrentYear      *string `json:"current_year"`
	InstitutionName  *string `json:"institution_name"`
	Studying         *string `json:"studying"`
	YearClass        *string `json:"year_class"`
	ProfilePicPath   *string `json:"profile_pic_path"`
}

// CadetInput replaces a cadet's profile sub-record.
type CadetInput struct {
	DOB             string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Age             *int32 `json:"age" validate:"omitempty,gte=0,lte=150"`
	MotherName      string `json:"mother_name"`
	FatherName      string `json:"father_name"`
	ParentPhone     string `json:"parent_phone"`
	ParentEmail     string `json:"parent_email" validate:"omitempty,email"`
	Address         string `json:"address"`
	Wing            string `json:"wing"`
	Category        string `json:"category"`
	CurrentYear     string `json:"current_year"`
	InstitutionName string `json:"institution_name"`
	Studying        string `json:"studying"`
	YearClass       string `json:"year_class"`
}

// AdminProfile joins a unit-admin account with its profile.
type AdminProfile struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Contact         string  `json:"contact"`
	UnitID          string  `json:"ano_id"`
	Role            string  `json:"role"`
	Type            string  `json:"type"`
	DOB             *string `json:"dob"`
	Address         *string `json:"address"`
	UnitName        *string `json:"unit_name"`
	InstitutionName *string `json:"institution_name"`
	ProfilePicPath  *string `json:"profile_pic_path"`
}

// AdminInput replaces a unit-admin's profile sub-record.
type AdminInput struct {
	DOB             string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Address         string `json:"address"`
	Role            string `json:"role"`
	UnitName        string `json:"unit_name"`
	InstitutionName string `json:"institution_name"`
}

// MasterProfile joins a super-admin account with its profile.
type MasterProfile struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Address        *string `json:"address"`
	ProfilePicPath *string `json:"profile_pic_path"`
}

// MasterInput replaces a super-admin's profile sub-record.
type MasterInput struct {
	Address string `json:"address"`
}
