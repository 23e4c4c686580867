package models

import (
	"io/ioutil"
	"log"
)

// InitializeTestDb points the package at a throwaway encrypted db, so
// gorm-backed tests don't touch a real data directory.
func InitializeTestDb() {
	dbRootDir, err := ioutil.TempDir("", "ares-test")
	if err != nil {
		log.Panic(err)
	}

	err = AutoMigrate("test-pass-phrase", dbRootDir)
	if err != nil {
		log.Panic(err)
	}
}
