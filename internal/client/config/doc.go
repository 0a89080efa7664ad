// Package config loads runtime configuration for the gophauth terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. GOPHAUTH_* environment variables, after loading a .env file if present.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-p string          identity provider: cognito or local
//	-d string          path of the client database
//	-l string          log level
//	-r int             token refresh interval (seconds)
//	-region string     Cognito region
//	-pool string       Cognito user pool id
//	-client-id string  Cognito app client id
//
// # JSON schema
//
//	{
//	  "provider": "cognito",
//	  "database_path": "gophauth.db",
//	  "log_level": "info",
//	  "login_path": "/login",
//	  "home_path": "/",
//	  "refresh_interval": "1m",
//	  "refresh_leeway": "5m",
//	  "cognito": {
//	    "region": "eu-central-1",
//	    "user_pool_id": "eu-central-1_AbCdEf",
//	    "client_id": "1example23456789"
//	  },
//	  "local": {"auto_confirm": true, "session_ttl": "24h"}
//	}
//
// # Environment
//
// GOPHAUTH_PROVIDER, GOPHAUTH_DB, GOPHAUTH_LOG_LEVEL, GOPHAUTH_LOGIN_PATH,
// GOPHAUTH_HOME_PATH, GOPHAUTH_REFRESH_INTERVAL, GOPHAUTH_REFRESH_LEEWAY,
// GOPHAUTH_COGNITO_{REGION,USER_POOL_ID,CLIENT_ID,CLIENT_SECRET,ENDPOINT} and
// GOPHAUTH_LOCAL_{AUTO_CONFIRM,SESSION_TTL}.
package config
