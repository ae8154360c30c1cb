package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/db"
	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/model"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedPublication struct {
	Title       string
	Author      string
	Description string
	Price       string
	Stock       int
	Series      string
}

func main() {
	log := logging.MustNew("pranam-seed", os.Getenv("APP_ENV"), false)
	if err := run(log); err != nil {
		log.Fatal("seed failed", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Info("publications already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	pubs := buildSeedPublications()
	created := 0
	err = repository.NewStore(gdb).Transaction(ctx, func(tx repository.Store) error {
		for idx, sp := range pubs {
			_, err := tx.Publications().FindByTitle(ctx, sp.Title)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			p := &model.Publication{
				Title:       strings.TrimSpace(sp.Title),
				Author:      strings.TrimSpace(sp.Author),
				Description: strings.TrimSpace(sp.Description),
				Price:       decimal.RequireFromString(sp.Price),
				Stock:       sp.Stock,
				ImageURL:    picsumURL(sp.Series, idx+1),
				IsActive:    true,
			}
			if err := tx.Publications().Create(ctx, p); err != nil {
				return fmt.Errorf("insert publication %q: %w", p.Title, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("seeded publications", zap.Int("created", created), zap.Int("total", len(pubs)))
	return nil
}

func buildSeedPublications() []seedPublication {
	type series struct {
		Slug   string
		Author string
		Price  string
		Titles []string
	}
	all := []series{
		{Slug: "bhakti", Author: "Sri Pranam Trust", Price: "250", Titles: []string{"Bhakti Sutra Commentary", "Songs of Devotion", "The Path of Surrender"}},
		{Slug: "gita", Author: "Swami Atmananda", Price: "350", Titles: []string{"Gita for Daily Life", "Karma Yoga Explained", "Dialogues at Kurukshetra"}},
		{Slug: "meditation", Author: "Acharya Vidya", Price: "180", Titles: []string{"First Steps in Meditation", "Breath and Stillness"}},
		{Slug: "children", Author: "Pranam Editorial", Price: "120", Titles: []string{"Stories from the Puranas", "Little Krishna Tales", "Festivals of India"}},
		{Slug: "magazine", Author: "Pranam Editorial", Price: "60", Titles: []string{"Pranam Monthly: Spring Issue", "Pranam Monthly: Monsoon Issue"}},
	}

	var pubs []seedPublication
	for _, s := range all {
		for i, t := range s.Titles {
			pubs = append(pubs, seedPublication{
				Title:       t,
				Author:      s.Author,
				Description: fmt.Sprintf("%s from the %s collection.", t, s.Slug),
				Price:       s.Price,
				Stock:       20 + i*10,
				Series:      s.Slug,
			})
		}
	}
	return pubs
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Publication{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count publications: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}

func picsumURL(slug string, index int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s-%d/600/800", slug, index)
}
