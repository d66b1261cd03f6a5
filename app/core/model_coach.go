package core

// Coach is a login account owning clients.
// swagger:model
type Coach struct {
	Model
	Name         string   `json:"name"`
	Email        string   `json:"email" gorm:"type:varchar(255);unique_index"`
	Token        string   `json:"token,omitempty" gorm:"-"`
	Password     string   `json:"-"`
	PasswordX    string   `json:"password,omitempty" gorm:"-"`
	IsActive     bool     `json:"is_active"`
	RegisteredAt NullTime `json:"registered_at"`

	Errors map[string]string `json:"-" gorm:"-"`
}

type Coaches []Coach

func (Coach) TableName() string {
	return "coaches"
}
