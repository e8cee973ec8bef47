// Package document defines the whole-school database document: one JSON
// blob holding every collection, versioned for last-writer-wins sync.
package document

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bukhari/academy/core/exam"
	"github.com/bukhari/academy/core/school"
	"github.com/bukhari/academy/core/user"
)

// DefaultAdminID is the seeded administrator profile ID.
const DefaultAdminID = "admin-1"

const defaultAdminPassword = "admin.sanobarhon.2003"

type Document struct {
	Profiles   []user.User         `json:"profiles"`
	Groups     []school.Group      `json:"groups"`
	Grades     []school.Grade      `json:"grades"`
	News       []school.News       `json:"news"`
	Homework   []school.Homework   `json:"homework"`
	Comments   []school.Comment    `json:"comments"`
	Attendance []school.Attendance `json:"attendance"`
	Payments   []school.Payment    `json:"payments"`

	TestQuestions []exam.Question `json:"testQuestions"`
	TestAttempts  []exam.Attempt  `json:"testAttempts"`
	TestResults   []exam.Result   `json:"testResults"`

	// Passwords maps profile ID to bcrypt hash. Kept outside the profile
	// objects so profiles stay safe to serve as-is.
	Passwords map[string]string `json:"passwords"`

	Version    int64     `json:"version"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Valid reports whether the document has the expected shape. A document
// without a profiles collection is rejected at the sync boundary.
func (d *Document) Valid() bool {
	return d != nil && d.Profiles != nil
}

// Clone deep-copies the document via a JSON round trip. The document is
// plain data, so this is exact.
func (d *Document) Clone() (*Document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out Document
	if err = json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Default returns a fresh document seeded with the administrator profile
// and the welcome news items.
func Default() *Document {
	now := time.Now().UTC()
	hash, _ := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)

	return &Document{
		Profiles: []user.User{
			{
				ID:           DefaultAdminID,
				Email:        "admin@bukhari.uz",
				FirstName:    "Admin",
				LastName:     "Bukhari",
				Role:         user.RoleAdmin,
				PasswordHash: hash,
				CreatedAt:    now,
				UpdatedAt:    now,
			},
		},
		News: []school.News{
			{
				ID:        "news-1",
				Title:     "Yangi guruh ochildi!",
				Content:   "Beginner darajasidagi yangi guruh ochildi. Darslar dushanba, chorshanba, juma kunlari soat 18:00 da boshlanadi.",
				AuthorID:  DefaultAdminID,
				CreatedAt: now.Add(-24 * time.Hour),
				UpdatedAt: now.Add(-24 * time.Hour),
			},
			{
				ID:        "news-2",
				Title:     "CEFR sertifikati olish imkoniyati",
				Content:   "O'quv markazimizda endi CEFR standartidagi xalqaro sertifikat olish imkoniyati mavjud. Batafsil ma'lumot uchun administratsiyaga murojaat qiling.",
				AuthorID:  DefaultAdminID,
				CreatedAt: now.Add(-48 * time.Hour),
				UpdatedAt: now.Add(-48 * time.Hour),
			},
		},
		Passwords: map[string]string{
			DefaultAdminID: string(hash),
		},
		Version:    1,
		LastUpdate: now,
	}
}
