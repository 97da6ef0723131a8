package main

import (
	"github.com/openhive/hivemux/utils"
	"github.com/openhive/hivemux/utils/dotenv"
	Logger "github.com/openhive/hivemux/utils/log"
)

// Runs the schema migration against the database configured by env. Claim
// slot tables carry unique indexes the claim engine depends on, so this must
// run before the api server takes traffic.
func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatalf("cannot connect to DB: %s", err)
	}

	utils.DatabaseSetupAndMigration(db)
	Logger.Log.Info("migration completed")
}
