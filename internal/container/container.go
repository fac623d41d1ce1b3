package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/config"
	"github.com/devtrail/bootcamper/internal/infrastructure/mongodb"
	"github.com/devtrail/bootcamper/pkg/geocoder"
	"github.com/devtrail/bootcamper/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	mongoClient *mongodb.Client
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager
	geo        geocoder.Geocoder

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)        { cfg = c }
func GetConfig() *config.Config         { return cfg }
func SetLogger(l *logrus.Logger)        { logger = l }
func GetLogger() *logrus.Logger         { return logger }
func SetMongo(m *mongodb.Client)        { mongoClient = m }
func GetMongo() *mongodb.Client         { return mongoClient }
func SetRedis(r *redis.Client)          { redisClient = r }
func GetRedis() *redis.Client           { return redisClient }
func SetGCS(s *storage.Client)          { gcsClient = s }
func GetGCS() *storage.Client           { return gcsClient }
func SetJWT(m *helpers.JWTManager)      { jwtManager = m }
func GetJWT() *helpers.JWTManager       { return jwtManager }
func SetGeocoder(g geocoder.Geocoder)   { geo = g }
func GetGeocoder() geocoder.Geocoder    { return geo }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
