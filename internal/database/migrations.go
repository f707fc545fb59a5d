package database

// Migration represents a single schema change
type Migration struct {
	Version string
	Up      string
}

var migrations = []Migration{
	{
		Version: "001_create_servers",
		Up: `
			CREATE TABLE IF NOT EXISTS servers (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				install_path TEXT NOT NULL,
				game_port INTEGER NOT NULL DEFAULT 7787,
				query_port INTEGER NOT NULL DEFAULT 27165,
				rcon_port INTEGER NOT NULL DEFAULT 21114,
				beacon_port INTEGER NOT NULL DEFAULT 15000,
				rcon_password TEXT NOT NULL DEFAULT '',
				extra_args TEXT NOT NULL DEFAULT '',
				is_running INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: "002_reset_running_flags",
		Up: `
			-- detached game processes can outlive the manager, but a fresh
			-- manager does not rediscover or re-adopt them, so the flags
			-- are stale either way
			UPDATE servers SET is_running = 0;
		`,
	},
}
