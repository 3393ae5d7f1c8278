package serialization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipsyai/agentflow/internal/core/flow"
)

func sampleFlow() *flow.Flow {
	return &flow.Flow{
		ID:     "flow-1",
		Name:   "Sample",
		Status: flow.StatusActive,
		Nodes: []flow.Node{
			{
				NodeID: "input-1",
				Type:   flow.NodeTypeInput,
				Name:   "Collect",
				Input: &flow.InputConfig{
					Fields: []flow.Field{{Name: "topic", Type: flow.FieldTypeText, Required: true}},
				},
			},
		},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestCodecs(t *testing.T) {
	for _, codec := range []Codec{NewJSONCodec(), NewMsgPackCodec()} {
		t.Run(codec.Name(), func(t *testing.T) {
			encoded, err := codec.Encode(sampleFlow())
			require.NoError(t, err)
			require.NotEmpty(t, encoded)

			var decoded flow.Flow
			require.NoError(t, codec.Decode(encoded, &decoded))
			assert.Equal(t, "flow-1", decoded.ID)
			require.Len(t, decoded.Nodes, 1)
			require.NotNil(t, decoded.Nodes[0].Input)
			assert.Equal(t, "topic", decoded.Nodes[0].Input.Fields[0].Name)
		})
	}
}

func TestSerializerRoundTrip(t *testing.T) {
	configs := map[string]Config{
		"json-plain":   {Codec: NewJSONCodec(), Compression: CompressionNone},
		"json-gzip":    {Codec: NewJSONCodec(), Compression: CompressionGzip},
		"msgpack-zstd": {Codec: NewMsgPackCodec(), Compression: CompressionZstd},
	}
	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			s := NewSerializer(cfg)
			data, err := s.Serialize(sampleFlow())
			require.NoError(t, err)

			var decoded flow.Flow
			require.NoError(t, s.Deserialize(data, &decoded))
			assert.Equal(t, sampleFlow().ID, decoded.ID)
			assert.Equal(t, sampleFlow().Nodes[0].NodeID, decoded.Nodes[0].NodeID)
		})
	}
}

func TestSerializerCompressionShrinksRepetitiveData(t *testing.T) {
	f := sampleFlow()
	for i := 0; i < 50; i++ {
		f.Nodes = append(f.Nodes, flow.Node{
			NodeID: "agent-filler",
			Type:   flow.NodeTypeAgent,
			Name:   "Filler",
			Agent:  &flow.AgentConfig{AgentID: "summarizer", PromptTemplate: "Summarize: {{topic}}"},
		})
	}

	plain := NewSerializer(Config{Codec: NewJSONCodec(), Compression: CompressionNone})
	compressed := NewSerializer(Config{Codec: NewJSONCodec(), Compression: CompressionZstd})

	raw, err := plain.Serialize(f)
	require.NoError(t, err)
	packed, err := compressed.Serialize(f)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(raw))
}

func TestDefaultSerializer(t *testing.T) {
	s := Default()
	assert.Equal(t, "msgpack", s.CodecName())

	data, err := s.Serialize(sampleFlow())
	require.NoError(t, err)
	var decoded flow.Flow
	require.NoError(t, s.Deserialize(data, &decoded))
	assert.Equal(t, "Sample", decoded.Name)
}
