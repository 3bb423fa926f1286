package main

import (
	"flag"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"vidtube/auth"
	"vidtube/crud"
	"vidtube/http"
	"vidtube/storage"
)

// main is the app's entry point.
func main() {
	// The "-prod" flag means we're running in production, which requires a
	// config file and flips logging to JSON.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a config.yml file is provided before the application starts.")
	flag.Parse()

	config := LoadConfig(*productionBool)
	if config.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	must(Open(db, config.IsProd()))
	defer Close(db)
	must(AutoMigrate(db))

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper),
		crud.WithVideo(),
		crud.WithComment(),
		crud.WithTweet(),
		crud.WithLike(),
	)
	must(err)

	// Connect to the media host.
	minioClient, err := minio.New(config.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.Minio.AccessKey, config.Minio.SecretKey, ""),
		Secure: config.Minio.UseSSL,
	})
	must(err)
	media := storage.NewMediaService(minioClient, config.Minio.Bucket, config.Minio.BaseURL, config.UploadTimeout)

	tokens := auth.NewTokenManager(config.JWTSecret, config.JWTTTL)

	// Set up a webserver and serve the app.
	server := http.NewServer(
		tokens,
		services.User,
		services.Video,
		services.Comment,
		services.Tweet,
		services.Like,
		media,
	)
	logrus.Infof("listening on port %d", config.Port)
	must(server.Run(config.Port))
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		logrus.Fatal(err)
	}
}
