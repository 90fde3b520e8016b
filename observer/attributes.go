package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys for embedding and analysis spans and metrics.
var (
	AttrEmbedModel      = attribute.Key("embed.model")
	AttrEmbedProvider   = attribute.Key("embed.provider")
	AttrEmbedTextCount  = attribute.Key("embed.text_count")
	AttrEmbedDimensions = attribute.Key("embed.dimensions")

	AttrAnalyzeDocuments = attribute.Key("analyze.documents")
	AttrAnalyzeChunks    = attribute.Key("analyze.chunks")
	AttrAnalyzeTopN      = attribute.Key("analyze.top_n")
)
