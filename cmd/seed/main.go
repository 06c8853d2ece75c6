package main

import (
	"flag"
	"log"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/config"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/database"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/models"
	"github.com/Aniket-Dev-IT/WellCarePlusCure-sub000/pkg/logger"
)

// Seeds a development database with an admin, a few doctors and a few
// patients. Safe to re-run: it does nothing when users already exist unless
// -wipe is given.
func main() {
	wipe := flag.Bool("wipe", false, "delete existing rows before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db) //nolint:errcheck

	seeded, err := seed(db, *wipe)
	if err != nil {
		zlog.Fatal("Seeding failed", zap.Error(err))
	}
	if !seeded {
		zlog.Info("Database already has users, nothing to do (use -wipe to reseed)")
		return
	}
	zlog.Info("Seeding complete")
}

func seed(db *gorm.DB, wipe bool) (bool, error) {
	seeded := false
	err := db.Transaction(func(tx *gorm.DB) error {
		if wipe {
			// Delete order respects foreign keys.
			for _, m := range []interface{}{
				&models.DeliveryLog{},
				&models.QueueEntry{},
				&models.Notification{},
				&models.Payment{},
				&models.Review{},
				&models.Appointment{},
				&models.Doctor{},
				&models.RefreshToken{},
				&models.User{},
			} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
					return err
				}
			}
		}

		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		admin := &models.User{
			Email:     "admin@wellcareplus.local",
			Password:  mustHash("ChangeMe123!"),
			FirstName: "Platform",
			LastName:  "Admin",
			Role:      models.RoleAdmin,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		doctors := []struct {
			first, last, email, city string
			specialty, qualification string
			experience, fee          int
		}{
			{"Asha", "Mehta", "asha.mehta@wellcareplus.local", "Mumbai", "Cardiology", "MD, DM Cardiology", 14, 150000},
			{"Rahul", "Verma", "rahul.verma@wellcareplus.local", "Delhi", "Dermatology", "MD Dermatology", 9, 90000},
			{"Sara", "Iyer", "sara.iyer@wellcareplus.local", "Bengaluru", "Pediatrics", "MD Pediatrics", 11, 80000},
			{"Vikram", "Rao", "vikram.rao@wellcareplus.local", "Hyderabad", "Orthopedics", "MS Orthopedics", 17, 120000},
		}
		for _, d := range doctors {
			user := &models.User{
				Email:     d.email,
				Password:  mustHash("ChangeMe123!"),
				FirstName: d.first,
				LastName:  d.last,
				Role:      models.RoleDoctor,
				City:      d.city,
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
			profile := &models.Doctor{
				UserID:              user.ID,
				Specialty:           d.specialty,
				Qualification:       d.qualification,
				ExperienceYears:     d.experience,
				ConsultationFee:     d.fee,
				Currency:            "inr",
				City:                d.city,
				WorkdayStart:        "09:00",
				WorkdayEnd:          "17:00",
				SlotDurationMinutes: 30,
				IsActive:            true,
			}
			if err := tx.Create(profile).Error; err != nil {
				return err
			}
		}

		patients := []struct {
			first, last, email, phone string
		}{
			{"Nina", "Kapoor", "nina.kapoor@example.com", "+919800000001"},
			{"Arjun", "Shah", "arjun.shah@example.com", "+919800000002"},
			{"Leela", "Nair", "leela.nair@example.com", ""},
		}
		for _, p := range patients {
			user := &models.User{
				Email:       p.email,
				Password:    mustHash("ChangeMe123!"),
				FirstName:   p.first,
				LastName:    p.last,
				Phone:       p.phone,
				Role:        models.RolePatient,
				NotifyEmail: true,
				NotifySMS:   p.phone != "",
			}
			if err := tx.Create(user).Error; err != nil {
				return err
			}
		}

		seeded = true
		return nil
	})
	return seeded, err
}

func mustHash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}
