package server

import (
	"errors"
	"fmt"
	"path"

	"github.com/ares-safety/ares/server/gstorage"
	"github.com/ares-safety/ares/server/models"
	"github.com/ares-safety/ares/server/work"
	"github.com/ares-safety/ares/utils"
)

const BACKUP_SQLITE_DB_HANDLER = "backupSqliteDb"

// deliverAlert sends one emergency SMS. The worker pool retries on failure,
// so a transient provider error never drops an alert silently.
func deliverAlert(args map[string]interface{}) error {
	phoneNumber, ok := args["phone_number"].(string)
	if !ok || phoneNumber == "" {
		return fmt.Errorf("deliverAlert: missing phone_number in %v", args)
	}

	message, ok := args["message"].(string)
	if !ok || message == "" {
		return fmt.Errorf("deliverAlert: missing message in %v", args)
	}

	err := twilioClient.SendMessage(phoneNumber, message)
	if err != nil {
		return err
	}

	logg.Infof("alert delivered to %v(%v)", args["contact_name"], phoneNumber)
	return nil
}

func backupSqliteDb(map[string]interface{}) error {
	dbFilePath, err := models.DbFilePath(dbRootDir)
	if err != nil {
		return err
	}

	return gStorage.UploadFile(
		serverConfig.Google.Storage.Bucket,
		serverConfig.Google.Storage.Prefix,
		dbFilePath,
	)
}

// restoreSqliteDb pulls the last backed-up db file when no local one exists
// yet, so a redeployed server picks up where the old one stopped. A missing
// backup object just means a fresh start.
func restoreSqliteDb() error {
	dbFilePath, err := models.DbFilePath(dbRootDir)
	if err != nil {
		return err
	}

	exists, err := utils.FileExist(dbFilePath)
	if err != nil || exists {
		return err
	}

	objectName := path.Join(serverConfig.Google.Storage.Prefix, models.DB_NAME)
	err = gStorage.DownloadFile(serverConfig.Google.Storage.Bucket, objectName, dbFilePath)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Infof("no sqlite backup found under %v, starting fresh", objectName)
		return nil
	}

	return err
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter) {
	wpa.Register(DELIVER_ALERT_HANDLER, deliverAlert)

	if sqliteBackupEnabled() {
		wpa.Register(BACKUP_SQLITE_DB_HANDLER, backupSqliteDb)
	}
}

func enqueueJobs(wpa *work.WorkerPoolAdapter) {
	if sqliteBackupEnabled() {
		wpa.PeriodicallyPerform(serverConfig.Google.Storage.SqliteBackupSchedule, work.JobParams{
			Name:    BACKUP_SQLITE_DB_HANDLER,
			Handler: BACKUP_SQLITE_DB_HANDLER,
			Unique:  true,
			Args:    map[string]interface{}{},
		})
	}
}

func sqliteBackupEnabled() bool {
	enabled, ok := serverConfig.Google.Storage.EnableSqliteBackupAndSync.(bool)
	return ok && enabled && gStorage != nil
}
