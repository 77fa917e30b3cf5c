package constants

const (
	APP_MAIN_MEDSTORE    = "medstore"
	APP_STORE_SERVICE    = "medstore-service"
	APP_BACKUP_SCHEDULER = "medstore-backup-scheduler"
)
