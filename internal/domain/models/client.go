package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Client is a customer who owns animals on the farm.
type Client struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NationalID string             `bson:"nationalId" json:"nationalId"`
	GivenNames string             `bson:"givenNames" json:"givenNames"`
	Surname    string             `bson:"surname" json:"surname"`
	Address    string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone      string             `bson:"phone" json:"phone"`
}

// FullName joins the client's given names and surname for reporting.
func (c Client) FullName() string {
	if c.GivenNames == "" && c.Surname == "" {
		return ""
	}
	return c.GivenNames + " " + c.Surname
}
