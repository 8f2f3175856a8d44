package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stemsi/cybertest-backend/internal/config"
	"github.com/stemsi/cybertest-backend/internal/database"
	"github.com/stemsi/cybertest-backend/internal/logger"
	"github.com/stemsi/cybertest-backend/internal/model"
	"github.com/stemsi/cybertest-backend/internal/repository"
	"github.com/stemsi/cybertest-backend/internal/service"
)

// demoQuestions covers one question per exam topic. Re-running the seeder skips
// texts that already exist in the version.
var demoQuestions = []model.QuestionForm{
	q("Which protocol is used to securely browse websites?", "Network Security",
		"HTTPS", "HTTP", "FTP", "SSH", "HTTPS"),
	q("Which tool is used for packet sniffing?", "System Security",
		"Wireshark", "Wireshark", "Metasploit", "Nmap", "Aircrack-ng"),
	q("What does SQL stand for?", "Web Security",
		"Structured Query Language",
		"Structured Query Language", "Strong Question Language", "System Query Logic", "Simple Query Line"),
	q("Which encryption algorithm is considered asymmetric?", "Cryptography",
		"RSA", "AES", "RSA", "DES", "3DES"),
	q("What is the primary goal of CIA triad in information security?", "General Security Concepts",
		"Confidentiality, Integrity, Availability",
		"Confidentiality, Integrity, Availability",
		"Control, Infrastructure, Access",
		"Cybersecurity, Infrastructure, Authentication",
		"Cryptography, Identity, Authorization"),
}

func q(text, topic, correct string, opts ...string) model.QuestionForm {
	form := model.QuestionForm{Question: text, Topic: topic, Correct: correct}
	slots := []*string{&form.Opt1, &form.Opt2, &form.Opt3, &form.Opt4}
	for i, o := range opts {
		if i < len(slots) {
			*slots[i] = o
		}
	}
	return form
}

func main() {
	var replace bool
	flag.BoolVar(&replace, "replace", false, "Delete every question of ACTIVE_VERSION before seeding")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	importer := service.NewQuestionImporter(repository.NewQuestionRepository(pool), cfg.ActiveVersion, log)
	res, err := importer.ImportForms(ctx, demoQuestions, replace)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	fmt.Printf("Seeded %d questions into version %s (%d already present)\n", res.Inserted, res.Version, res.Skipped)
}
