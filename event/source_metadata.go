package event

import (
	"fmt"
	"time"

	"github.com/c360/semdecode/config"
	"github.com/c360/semdecode/lookup"
)

// MetadataNamespace is the metadata object holding source information under
// the Modern namespace.
const MetadataNamespace = "semdecode"

var (
	// SourceTypeMetadataPath is where Modern events record their source type.
	SourceTypeMetadataPath = lookup.ValuePath{
		lookup.FieldSegment(MetadataNamespace),
		lookup.FieldSegment("source_type"),
	}
	// IngestTimestampMetadataPath is where Modern events record when they were received.
	IngestTimestampMetadataPath = lookup.ValuePath{
		lookup.FieldSegment(MetadataNamespace),
		lookup.FieldSegment("ingest_timestamp"),
	}
)

// InsertStandardSourceMetadata records the source type and ingest time.
//
// Legacy events get the fields at the log schema's source type and timestamp
// keys; existing values, and scalars sitting where a nested key would go, are
// kept so decoded data wins. Modern events get
// the same information in metadata and their value is left untouched.
func InsertStandardSourceMetadata(log *LogEvent, ns config.LogNamespace, ls config.LogSchema, sourceType string, now time.Time) error {
	switch ns {
	case config.NamespaceModern:
		log.MetadataInsert(SourceTypeMetadataPath, []byte(sourceType))
		log.MetadataInsert(IngestTimestampMetadataPath, now)
		return nil
	case config.NamespaceLegacy:
		ls = ls.WithDefaults()
		sourceKey, err := ls.SourceTypeKeyPath()
		if err != nil {
			return err
		}
		timestampKey, err := ls.TimestampKeyPath()
		if err != nil {
			return err
		}
		log.InsertIfAbsent(sourceKey, []byte(sourceType))
		log.InsertIfAbsent(timestampKey, now)
		return nil
	default:
		return fmt.Errorf("insert source metadata: unsupported namespace %s", ns)
	}
}
