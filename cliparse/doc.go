// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Precedence

CLI flags win over environment variables, which win over defaults. Before
the environment is read, a dotenv file is loaded (-env-file or ENV_FILE,
default .env). Variables already present in the environment are never
overwritten by the file.

# Settings

	-p                   PORT                        3318
	-d                   DATABASE_URL                schelling-point.db (sqlite)
	-t                   DATABASE_TYPE               sqlite
	-base-url            BASE_URL                    http://localhost:<port>
	-organizer-salt      ORGANIZER_KEY_SALT          required
	-slug-salt           EVENT_SLUG_SALT             required
	-card-salt           CARD_HASH_SALT              slug salt
	-credits             DEFAULT_VOTE_CREDITS        100
	-attendance-credits  DEFAULT_ATTENDANCE_CREDITS  100
	-log-level           LOG_LEVEL                   info
	-log-format          LOG_FORMAT                  text
	-seed                SEED_FILE
	-kafka-brokers       KAFKA_BROKERS               events are only logged when empty
	-kafka-topic         KAFKA_TOPIC                 schelling-point.events

# Validation

ParseFlags returns an error for a missing salt, an unknown database type,
postgres without a URL, non-positive credits, or an unknown log level or
format.
*/
package cliparse
