// Package seed fills an empty database with an admin, a few agents and a
// demo catalogue so the listing pages have something to show.
package seed

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"realty_backend/internal/model"
)

const DemoPassword = "password123"

type demoAgent struct {
	Name       string
	Email      string
	Phone      string
	Location   string
	Experience int
}

type demoProperty struct {
	Title     string
	Location  string
	Type      model.PropertyType
	Purpose   model.Purpose
	Price     string
	Beds      int
	Baths     int
	AreaSqFt  int
	Agent     int
	Image     string
	Amenities string
}

var agents = []demoAgent{
	{Name: "Priya Sharma", Email: "priya@realty.example", Phone: "+91 98200 11111", Location: "Mumbai", Experience: 9},
	{Name: "Rahul Mehta", Email: "rahul@realty.example", Phone: "+91 98450 22222", Location: "Bangalore", Experience: 6},
	{Name: "Anita Rao", Email: "anita@realty.example", Phone: "+91 99890 33333", Location: "Hyderabad", Experience: 12},
	{Name: "Vikram Singh", Email: "vikram@realty.example", Phone: "+91 98110 44444", Location: "Delhi", Experience: 4},
}

var properties = []demoProperty{
	{"Sea View Apartment", "Bandra West, Mumbai", model.PropertyTypeApartment, model.PurposeForSale, "₹3.2 Cr", 3, 3, 1650, 0, "https://images.unsplash.com/photo-1545324418-cc1a3fa10c00", `["Sea view","Gym","Covered parking"]`},
	{"Garden Villa", "Whitefield, Bangalore", model.PropertyTypeVilla, model.PurposeForSale, "₹2.45 Cr", 4, 4, 3200, 1, "https://images.unsplash.com/photo-1613490493576-7fde63acd811", `["Private garden","Clubhouse"]`},
	{"Studio Near Metro", "Saket, Delhi", model.PropertyTypeStudio, model.PurposeForRent, "₹18,000/month", 1, 1, 450, 3, "https://images.unsplash.com/photo-1522708323590-d24dbb6b0267", `["Furnished","Metro access"]`},
	{"Lake Side House", "Gachibowli, Hyderabad", model.PropertyTypeHouse, model.PurposeForSale, "₹1.85 Cr", 4, 3, 2800, 2, "https://images.unsplash.com/photo-1568605114967-8130f3a36994", `["Lake view","Solar panels"]`},
	{"Family Flat", "Kothrud, Pune", model.PropertyTypeFlat, model.PurposeForRent, "₹35,000/month", 2, 2, 1100, 1, "https://images.unsplash.com/photo-1502672260266-1c1ef2d93688", `["Lift","Power backup"]`},
	{"Skyline Penthouse", "Worli, Mumbai", model.PropertyTypePenthouse, model.PurposeForSale, "₹8.5 Cr", 5, 5, 4800, 0, "https://images.unsplash.com/photo-1512917774080-9991f1c4c750", `["Terrace pool","Concierge"]`},
	{"Budget 2BHK", "Electronic City, Bangalore", model.PropertyTypeFlat, model.PurposeForSale, "₹62 L", 2, 2, 980, 1, "https://images.unsplash.com/photo-1560448204-e02f11c3d0e2", `["Gated community"]`},
	{"Compact 1BHK", "Andheri East, Mumbai", model.PropertyTypeApartment, model.PurposeForRent, "₹42,000/month", 1, 1, 600, 0, "https://images.unsplash.com/photo-1493809842364-78817add7ffb", `["Near airport"]`},
	{"Heritage Bungalow", "Jubilee Hills, Hyderabad", model.PropertyTypeHouse, model.PurposeForRent, "₹1,25,000/month", 5, 4, 5200, 2, "https://images.unsplash.com/photo-1580587771525-78b9dba3b914", `["Staff quarters","Garden"]`},
	{"Residential Plot", "Sohna Road, Gurgaon", model.PropertyTypePlot, model.PurposeForSale, "₹95 L", 0, 0, 2400, 3, "https://images.unsplash.com/photo-1500382017468-9049fed747ef", `["Corner plot"]`},
	{"Modern Villa", "Alibaug, Mumbai", model.PropertyTypeVilla, model.PurposeForSale, "₹5.75 Cr", 4, 5, 4100, 0, "https://images.unsplash.com/photo-1600596542815-ffad4c1539a9", `["Beach access","Pool"]`},
	{"Shared-wall Townhouse", "Koramangala, Bangalore", model.PropertyTypeHouse, model.PurposeForRent, "₹75,000/month", 3, 3, 1900, 1, "https://images.unsplash.com/photo-1570129477492-45c003edd2be", `["Pet friendly"]`},
}

// Run seeds the admin, agents and demo listings. Rows are matched on email or
// slug, so running it again does not duplicate anything.
func Run(db *gorm.DB) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("could not hash demo password: %w", err)
	}

	admin := model.User{Email: "admin@realty.example", Password: string(hashed), Name: "Admin", Role: model.RoleAdmin}
	if err := db.Where(model.User{Email: admin.Email}).FirstOrCreate(&admin).Error; err != nil {
		return fmt.Errorf("could not seed admin: %w", err)
	}

	agentIDs := make([]uint, len(agents))
	for i, a := range agents {
		user := model.User{
			Email:      a.Email,
			Password:   string(hashed),
			Name:       a.Name,
			Role:       model.RoleAgent,
			Phone:      a.Phone,
			Location:   a.Location,
			Experience: a.Experience,
		}
		if err := db.Where(model.User{Email: a.Email}).FirstOrCreate(&user).Error; err != nil {
			return fmt.Errorf("could not seed agent %s: %w", a.Email, err)
		}
		agentIDs[i] = user.ID
	}

	created := 0
	for _, p := range properties {
		var count int64
		db.Model(&model.Property{}).Where("title = ? AND agent_id = ?", p.Title, agentIDs[p.Agent]).Count(&count)
		if count > 0 {
			continue
		}

		property := model.Property{
			Title:     p.Title,
			Location:  p.Location,
			Type:      p.Type,
			Purpose:   p.Purpose,
			Price:     p.Price,
			Beds:      p.Beds,
			Baths:     p.Baths,
			AreaSqFt:  p.AreaSqFt,
			Amenities: []byte(p.Amenities),
			AgentID:   agentIDs[p.Agent],
			Images:    []model.PropertyImage{{URL: p.Image, IsCover: true}},
		}
		if err := db.Create(&property).Error; err != nil {
			return fmt.Errorf("could not seed property %q: %w", p.Title, err)
		}
		created++
	}

	log.Printf("Seed finished: %d agents, %d new properties", len(agents), created)
	return nil
}
