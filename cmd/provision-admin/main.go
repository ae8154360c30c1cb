// Command provision-admin creates or promotes the admin account named by
// ADMIN_EMAIL. Running it again is safe.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/juhi-kothari/Pranam-app/internal/config"
	"github.com/juhi-kothari/Pranam-app/internal/db"
	"github.com/juhi-kothari/Pranam-app/internal/logging"
	"github.com/juhi-kothari/Pranam-app/internal/repository"
	"github.com/juhi-kothari/Pranam-app/internal/service"
	"go.uber.org/zap"
)

func main() {
	log := logging.MustNew("pranam-provision-admin", os.Getenv("APP_ENV"), false)
	_ = godotenv.Load()

	dbCfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatal("load database config", zap.Error(err))
	}
	admin, err := config.LoadAdmin()
	if err != nil {
		log.Fatal("load admin config", zap.Error(err))
	}
	gdb, err := db.Connect(dbCfg)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}

	accounts := service.NewAccountService(repository.NewUserRepository(gdb), nil, log)
	u, created, err := accounts.EnsureAdmin(context.Background(), admin.Name, admin.Email, admin.Password)
	if err != nil {
		log.Fatal("provision admin", zap.Error(err))
	}
	log.Info("admin ready", zap.Uint64("user_id", u.ID), zap.String("email", u.Email), zap.Bool("created", created))
}
