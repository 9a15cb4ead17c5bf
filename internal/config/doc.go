// Package config loads and validates viaduct.json project configuration.
//
// A minimal viaduct.json looks like:
//
//	{
//	  "name": "my-app",
//	  "port": 3000,
//	  "baseURL": "https://my-app.example.com",
//	  "deploy": {
//	    "bucket": "my-app-site",
//	    "prefix": "production",
//	    "region": "us-east-1"
//	  }
//	}
//
// All fields except name are optional. Load applies defaults (port 3000,
// host localhost, output directory dist) and validates the result, so a
// successfully loaded Config is always usable.
package config
