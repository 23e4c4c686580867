package models

type Contact struct {
	BaseModel
	UserID            string `json:"user_id" gorm:"not null;index"`
	Name              string `json:"name" validate:"required"`
	PhoneNumber       string `json:"phone_number" validate:"required,phone_number"`
	Relationship      string `json:"relationship"`
	Priority          int    `json:"priority" gorm:"default:1"`
	NotifyOnEmergency bool   `json:"notify_on_emergency" gorm:"default:true"`
}

func FindContact(id string) (*Contact, error) {
	contact := Contact{}
	err := db.First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &contact, nil
}
