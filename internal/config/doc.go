// Package config provides configuration parsing for the junction command.
//
// The configuration is stored in junction.yaml (or junction.json) in the
// working directory:
//
//	signals: reactive
//	transform: trim
//	logLevel: debug
//	metrics:
//	  enabled: true
//	  namespace: junction
//	tracing:
//	  enabled: false
//	  tracerName: junction
//	seed:
//	  theme: light
//	  retries: 3
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Signals:", cfg.Signals)
package config
