package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned when the configuration is not a JSON object.
var ErrInvalidConfig = errors.New("config must be a JSON object")

// Channel is the subset of a messaging channel block the rules look at.
type Channel struct {
	DMPolicy string
}

// Document is the typed view of an openclaw.json the rules operate on.
// Values of the wrong JSON type are dropped during Normalize and read as unset.
type Document struct {
	Host           string
	AuthToken      string
	Model          string
	DefaultModel   string
	WhatsApp       *Channel
	Elevated       bool
	ExecSecurity   string
	WorkspaceFiles int
	HasFileList    bool
	Port           int
	CORSOrigin     string
}

// ActiveModel is the model the gateway will run with, preferring "model" over "defaultModel".
func (d Document) ActiveModel() string {
	if d.Model != "" {
		return d.Model
	}
	return d.DefaultModel
}

// Parse decodes raw JSON and normalizes it. Anything but a JSON object is rejected.
func Parse(raw []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Document{}, ErrInvalidConfig
	}
	return Normalize(obj), nil
}

// Normalize coerces an untrusted JSON object into a Document.
func Normalize(cfg map[string]any) Document {
	doc := Document{
		Host:         str(cfg, "host"),
		AuthToken:    str(cfg, "authToken"),
		Model:        str(cfg, "model"),
		DefaultModel: str(cfg, "defaultModel"),
		Elevated:     boolean(cfg, "elevated"),
		ExecSecurity: str(obj(cfg, "security"), "exec"),
		CORSOrigin:   str(obj(cfg, "cors"), "origin"),
	}

	whatsapp := obj(obj(cfg, "channels"), "whatsapp")
	if whatsapp == nil {
		whatsapp = obj(cfg, "whatsapp")
	}
	if whatsapp != nil {
		doc.WhatsApp = &Channel{DMPolicy: str(whatsapp, "dmPolicy")}
	}

	if files, ok := obj(cfg, "workspace")["files"].([]any); ok {
		doc.HasFileList = true
		doc.WorkspaceFiles = len(files)
	}

	if port, ok := cfg["port"].(float64); ok && port == math.Trunc(port) && port > 0 && port <= math.MaxInt32 {
		doc.Port = int(port)
	}

	return doc
}

func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	v, _ := m[key].(string)
	return v
}

func boolean(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}
