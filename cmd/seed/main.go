package main

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/example/daps/internal/config"
	"github.com/example/daps/internal/database"
	"github.com/example/daps/internal/models"
	"github.com/example/daps/internal/utils"
)

type seedAthlete struct {
	Name     string
	Team     string
	Featured bool
}

var seedAthletes = []seedAthlete{
	{Name: "LeBron James", Team: "Lakers", Featured: true},
	{Name: "Stephen Curry", Team: "Warriors", Featured: true},
	{Name: "Jayson Tatum", Team: "Celtics", Featured: true},
	{Name: "Giannis Antetokounmpo", Team: "Bucks"},
	{Name: "Luka Doncic", Team: "Mavericks"},
	{Name: "Kevin Durant", Team: "Suns"},
}

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)

	for _, s := range seedAthletes {
		athlete, created, err := upsertAthlete(db, s)
		if err != nil {
			log.Fatalf("seed athlete %s: %v", s.Name, err)
		}
		if created {
			log.Printf("[Seed] created athlete %s (%s)", athlete.Name, athlete.Slug)
		}

		if err := seedDemoGames(db, athlete); err != nil {
			log.Fatalf("seed games for %s: %v", athlete.Slug, err)
		}
	}

	log.Println("[Seed] done")
}

func upsertAthlete(db *gorm.DB, s seedAthlete) (*models.Athlete, bool, error) {
	slug := utils.Slugify(s.Name)

	var athlete models.Athlete
	err := db.First(&athlete, "slug = ?", slug).Error
	if err == nil {
		return &athlete, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	athlete = models.Athlete{
		Slug:     slug,
		Name:     s.Name,
		Team:     s.Team,
		League:   "NBA",
		Active:   true,
		Featured: s.Featured,
	}
	if err := db.Create(&athlete).Error; err != nil {
		return nil, false, err
	}
	return &athlete, true, nil
}

// seedDemoGames inserts a handful of placeholder games so the catalog
// is browsable before the first provider sync. Athletes that already
// have any games are left alone.
func seedDemoGames(db *gorm.DB, athlete *models.Athlete) error {
	var count int64
	if err := db.Model(&models.Game{}).Where("athlete_id = ?", athlete.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	opponents := []string{"Celtics", "Heat", "Nuggets", "Knicks"}
	base := time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)

	games := make([]models.Game, 0, len(opponents))
	for i, opp := range opponents {
		if opp == athlete.Team {
			continue
		}
		venue := "Home"
		if i%2 == 1 {
			venue = "Away"
		}
		games = append(games, models.Game{
			AthleteID: athlete.ID,
			Date:      base.AddDate(0, 0, i*3),
			Opponent:  opp,
			Venue:     venue,
			Source:    "seed",
		})
	}

	if err := db.Create(&games).Error; err != nil {
		return err
	}
	log.Printf("[Seed] added %d demo games for %s", len(games), athlete.Slug)
	return nil
}
