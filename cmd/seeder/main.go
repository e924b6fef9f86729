package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/sportsdiff/internal/database"
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/store"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := make(map[string]string)
	for _, key := range []string{"DB_NAME", "TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN"} {
		config[key] = os.Getenv(key)
	}
	if config["DB_NAME"] == "" && config["TURSO_PRIMARY_URL"] == "" {
		log.Fatal("Error: set DB_NAME or TURSO_PRIMARY_URL")
	}
	return config
}

func main() {
	userID := flag.String("user", "", "User that owns the imported list")
	name := flag.String("name", "Seeded players", "Name of the player list")
	rosterPath := flag.String("roster", "", "Roster file, one \"Name level\" per line")
	asProfile := flag.Bool("profile", false, "Also store the roster as the user's current roster")
	flag.Parse()

	if *userID == "" || *rosterPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	text, err := os.ReadFile(*rosterPath)
	if err != nil {
		log.Fatalf("Failed to read roster: %s", err)
	}
	attendees, lineErrs := roster.ParseLines(string(text))
	for _, le := range lineErrs {
		log.Warn("Skipping roster line", "line", le.Line, "text", le.Text, "error", le.Err)
	}

	st := store.New(db)
	list, err := st.CreatePlayerList(*userID, *name, attendees)
	if err != nil {
		log.Fatalf("Failed to create player list: %s", err)
	}
	if *asProfile {
		if err := st.SaveRosterText(*userID, string(text)); err != nil {
			log.Fatalf("Failed to save roster: %s", err)
		}
	}
	log.Info("Seeded player list", "user_id", *userID, "list_id", list.ID, "players", len(attendees)-len(lineErrs))
}
