package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ares-safety/ares/server/auth/key"
	"github.com/ares-safety/ares/server/gstorage"
	"github.com/ares-safety/ares/server/logger"
	"github.com/ares-safety/ares/server/models"
	"github.com/ares-safety/ares/server/twilio"
	"github.com/ares-safety/ares/server/work"
	"github.com/ares-safety/ares/shared"
	"github.com/ares-safety/ares/utils"
	"github.com/go-playground/validator"
)

var (
	logg     = logger.NewLogger()
	validate = validator.New()

	serverConfig *shared.ServerConfig
	dbRootDir    string

	authKeyPair  *key.KeyPair
	workerPool   *work.WorkerPoolAdapter
	twilioClient *twilio.ClientWrapper
	gStorage     *gstorage.GStorage
)

func init() {
	fatalOnError(RegisterValidators(validate))
}

// Start brings up the ares server: migrates the encrypted sqlite store,
// loads the signing key pair, starts the worker pool & listens for requests
// until SIGINT/SIGTERM.
func Start(config *shared.ServerConfig, devMode bool) {
	var err error

	fatalOnError(validate.Struct(config))
	serverConfig = config
	dbRootDir = dataDirectory(devMode)

	if config.Google.ApplicationCredentials != "" {
		gStorage, err = gstorage.NewGStorage(config.Google.ApplicationCredentials)
		fatalOnError(err)
	}

	if sqliteBackupEnabled() {
		fatalOnError(restoreSqliteDb())
	}

	fatalOnError(models.AutoMigrate(config.Sqlite.PassPhrase, dbRootDir))

	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(config.Ares.PrivateKeyPem)
	fatalOnError(err)

	// In dev mode, messages are logged instead of hitting twilio
	twilioClient = twilio.NewClient(config.Twilio, devMode)

	workerPool = work.NewWorkerAdapter(config.Ares.Cron.TimeZone)
	registerJobHandlers(workerPool)
	enqueueJobs(workerPool)
	workerPool.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", config.Ares.Listener.Port),
		Handler: newRouter(),
	}
	go serve(server)

	interruptChannel := make(chan os.Signal, 1)
	signal.Notify(interruptChannel, syscall.SIGINT, syscall.SIGTERM)
	<-interruptChannel

	cleanup(server)
}

func serve(server *http.Server) {
	logg.Infof("Ares server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(server *http.Server) {
	workerPool.Stop()

	if sqliteBackupEnabled() {
		if err := backupSqliteDb(nil); err != nil {
			logg.Errorf("final sqlite backup failed: %v", err)
		}
	}

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Ares server shutdown failed:%+s", err)
	}

	logg.Infof("Ares server stopped properly")
}

// dataDirectory retrieves the directory for the sqlite store.
// Or logs an error message and then calls os.Exit if it's unable to.
func dataDirectory(devMode bool) string {
	// Use 'ares' folder in home directory for prod
	dataFolderName := "ares"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		dataFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	dataDir := filepath.Join(rootDir, dataFolderName)
	fatalOnError(utils.CreateDirIfNotExist(dataDir))

	return dataDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
