// Package config provides configuration for semdecode applications.
//
// It owns the small set of types every codec agrees on (LogNamespace,
// DataType, LogSchema) and the application Config that selects a codec and
// wires the NATS decode processor.
//
// # Namespaces
//
// LogNamespace selects the event layout. Legacy stores decoded data under the
// configured message key; Modern stores it at the event root and keeps source
// metadata separate. Both the schema declaration and the decode call take the
// namespace explicitly, and a pipeline must pass the same value to both.
//
// # Log Schema
//
// LogSchema names the well-known Legacy fields. It is resolved once from
// configuration and handed to codecs at construction time:
//
//	ls := cfg.LogSchema.WithDefaults()
//	key, err := ls.MessageKeyPath()
//
// # Loading
//
// Loader merges JSON or YAML layers over DefaultConfig, then applies
// SEMDECODE_* environment overrides:
//
//	loader := config.NewLoader()
//	loader.AddLayer("configs/base.yaml")
//	loader.AddLayer("configs/production.json") // Overrides base
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The "decoding" and "processor" sections are kept as raw JSON and parsed by
// the packages that own them. Layers replace these sections wholesale.
//
// # Environment Overrides
//
//	SEMDECODE_LOG_NAMESPACE   legacy | modern
//	SEMDECODE_MESSAGE_KEY     log_schema.message_key
//	SEMDECODE_TIMESTAMP_KEY   log_schema.timestamp_key
//	SEMDECODE_NATS_URLS       comma separated server list
//	SEMDECODE_NATS_USERNAME   NATS credentials
//	SEMDECODE_NATS_PASSWORD
//	SEMDECODE_NATS_TOKEN
//	SEMDECODE_METRICS_PORT    Prometheus port, 0 disables
//	SEMDECODE_METRICS_PATH
package config
