package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/nasihat/dashboard-api/config"
	"github.com/nasihat/dashboard-api/internal/application"
	"github.com/nasihat/dashboard-api/internal/domain/entity"
	pginfra "github.com/nasihat/dashboard-api/internal/infrastructure/postgres"
	"github.com/nasihat/dashboard-api/pkg/helpers"
)

// Seeds a demo account and the starter job listings shown on a fresh
// dashboard. Safe to run repeatedly: the user is upserted and jobs are
// only inserted when the table is empty.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	email := "demo@nasihat.ai"
	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, provider)
		VALUES ($1, $2, $3, 'email')
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, "Demo User", hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", id, email, password)

	var jobCount int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM jobs`).Scan(&jobCount); err != nil {
		log.Fatalf("failed to count jobs: %v", err)
	}
	if jobCount > 0 {
		fmt.Printf("jobs table already has %d rows, skipping job seed\n", jobCount)
		return
	}

	jobRepo := pginfra.NewJobRepository(pool)
	jobSvc := application.NewJobService(jobRepo, helpers.NewLogger(cfg.AppName, cfg.Env), nil, cfg.ESJobsIndex)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Printf("elasticsearch unavailable, seeding postgres only: %v", err)
		} else {
			jobSvc.ES = es
		}
	}

	now := time.Now()
	for i := range seedJobs {
		j := &seedJobs[i]
		j.PostedAt = now.Add(-j.postedAgo)
		if err := jobRepo.Create(ctx, &j.Job); err != nil {
			log.Fatalf("failed to seed job %q: %v", j.Title, err)
		}
		_ = jobSvc.Index(ctx, &j.Job)
	}
	fmt.Printf("seeded %d jobs\n", len(seedJobs))
}

type seedJob struct {
	entity.Job
	postedAgo time.Duration
}

var seedJobs = []seedJob{
	{
		Job: entity.Job{
			Company: "Google", Title: "Product Designer", Website: "google.com",
			Location: "Mountain View, CA", Salary: "USD 120,000 - 180,000", JobType: "Remote",
			Tags:        []string{"Matched", "Remote", "Design"},
			Description: "This Product Design role at Google is a remote opportunity that aligns with your passion for creating intuitive, high-impact digital experiences. As a growing technology company, it offers room to shape design systems, improve user workflows, and directly influence product direction. Work on products used by billions worldwide.",
		},
		postedAgo: 4 * 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Netflix", Title: "Marketing Consultant", Website: "netflix.com",
			Location: "Los Gatos, CA", Salary: "USD 90,000 - 130,000", JobType: "Full-time",
			Tags:        []string{"Matched", "Marketing", "Consultant"},
			Description: "Join Netflix as a Marketing Consultant and help drive brand strategies for the world's leading streaming entertainment service. You'll work on exciting campaigns, analyze market trends, and contribute to content positioning strategies.",
		},
		postedAgo: 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Meta", Title: "User Experience Designer", Website: "meta.com",
			Location: "Menlo Park, CA", Salary: "USD 130,000 - 190,000", JobType: "Full-time",
			Tags:        []string{"Matched", "UX Design", "Tech"},
			Description: "As a UX Designer at Meta, you'll be responsible for creating seamless digital experiences for billions of users across Facebook, Instagram, and WhatsApp. Work with cross-functional teams to design innovative solutions for social media and virtual reality.",
		},
		postedAgo: 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Microsoft", Title: "Senior Frontend Developer", Website: "microsoft.com",
			Location: "Remote", Salary: "USD 140,000 - 200,000", JobType: "Remote",
			Tags:        []string{"Saved", "Frontend", "Senior Level"},
			Description: "Join Microsoft's global team as a Senior Frontend Developer. Build cutting-edge web applications using React, TypeScript, and modern development tools. Work on products used by millions worldwide including Office 365 and Azure.",
		},
		postedAgo: 2 * 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Apple", Title: "iOS Engineer", Website: "apple.com",
			Location: "Cupertino, CA", Salary: "USD 150,000 - 220,000", JobType: "Full-time",
			Tags:        []string{"Hot", "iOS", "Mobile"},
			Description: "Be part of Apple's iOS development team! Work on native iOS applications that power the iPhone and iPad experience. Collaborate with world-class designers and engineers to create innovative mobile experiences.",
		},
		postedAgo: 3 * 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Amazon", Title: "Product Manager", Website: "amazon.com",
			Location: "Seattle, WA", Salary: "USD 120,000 - 170,000", JobType: "Full-time",
			Tags:        []string{"Product", "Management", "Remote"},
			Description: "Lead product development at Amazon, the world's largest e-commerce platform. Drive product strategy, work with engineering teams, and shape the future of cloud computing and retail technology.",
		},
		postedAgo: 5 * 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Spotify", Title: "Data Scientist", Website: "spotify.com",
			Location: "Stockholm, Sweden", Salary: "EUR 70,000 - 95,000", JobType: "Remote",
			Tags:        []string{"Data Science", "Analytics", "Remote"},
			Description: "Join Spotify's data team and help derive insights from music streaming data. Build recommendation algorithms, create personalized playlists, and drive data-driven decision making for 400+ million users.",
		},
		postedAgo: 7 * 24 * time.Hour,
	},
	{
		Job: entity.Job{
			Company: "Uber", Title: "Mobile App Developer", Website: "uber.com",
			Location: "San Francisco, CA", Salary: "USD 130,000 - 180,000", JobType: "Full-time",
			Tags:        []string{"Mobile", "React Native", "Full Stack"},
			Description: "Develop mobile applications for Uber's global transportation platform. Work with cutting-edge mobile technologies including React Native and reach millions of riders and drivers worldwide.",
		},
		postedAgo: 6 * 24 * time.Hour,
	},
}
