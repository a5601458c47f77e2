// Command seed fills projects with a demo set of issues.
//
//	seed -d postgres://... -k APP,OPS
//
// Existing issues of every listed project are removed first.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/flagx"
	"github.com/dmitrijs2005/issuetracker/internal/server"
	"github.com/dmitrijs2005/issuetracker/internal/server/config"
	"github.com/dmitrijs2005/issuetracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/issuetracker/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	var keys string
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fs.StringVar(&keys, "k", "", "comma separated project keys")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-k"}))

	if strings.TrimSpace(keys) == "" {
		log.Fatal("no project keys given, use -k KEY[,KEY...]")
	}

	db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	seeder := services.NewSeedService(db, rm, cfg)
	for _, key := range strings.Split(keys, ",") {
		n, err := seeder.SeedProject(ctx, key)
		if err != nil {
			log.Printf("project %s: %v", key, err)
			continue
		}
		log.Printf("seeded %d issues for project %s", n, strings.TrimSpace(key))
	}
}
