package manifest

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Filename is the fixed name of the manifest entry inside a package.
const Filename = "_manifest.yml"

// Entry name prefixes for package payloads.
const (
	ScriptsPrefix  = "Scripts/"
	MediaPrefix    = "Media/"
	ArchivesPrefix = "Archives/"
	FilesPrefix    = "Files/"
)

// EntityType tags the kind of entity a package carries.
type EntityType string

const (
	TypeGame            EntityType = "Game"
	TypeTool            EntityType = "Tool"
	TypeServer          EntityType = "Server"
	TypeRedistributable EntityType = "Redistributable"
)

// Valid reports whether t names a known entity type.
func (t EntityType) Valid() bool {
	switch t {
	case TypeGame, TypeTool, TypeServer, TypeRedistributable:
		return true
	}
	return false
}

// Game is the manifest record for one game and its declared relationships.
type Game struct {
	Id          uuid.UUID `yaml:"Id"`
	Title       string    `yaml:"Title"`
	SortTitle   string    `yaml:"SortTitle,omitempty"`
	Description string    `yaml:"Description,omitempty"`
	Notes       string    `yaml:"Notes,omitempty"`
	ReleasedOn  time.Time `yaml:"ReleasedOn,omitempty"`
	CreatedOn   time.Time `yaml:"CreatedOn"`
	UpdatedOn   time.Time `yaml:"UpdatedOn"`

	Engine           string            `yaml:"Engine,omitempty"`
	Collections      []string          `yaml:"Collections,omitempty"`
	Developers       []string          `yaml:"Developers,omitempty"`
	Publishers       []string          `yaml:"Publishers,omitempty"`
	Genres           []string          `yaml:"Genres,omitempty"`
	Tags             []string          `yaml:"Tags,omitempty"`
	Platforms        []string          `yaml:"Platforms,omitempty"`
	MultiplayerModes []MultiplayerMode `yaml:"MultiplayerModes,omitempty"`
	Media            []Media           `yaml:"Media,omitempty"`
	Archives         []Archive         `yaml:"Archives,omitempty"`
	Scripts          []Script          `yaml:"Scripts,omitempty"`
}

// MultiplayerMode describes one way a game can be played with others.
// Modes have no stable id; the natural key is (NetworkProtocol, Type).
type MultiplayerMode struct {
	Type            string `yaml:"Type"`
	NetworkProtocol string `yaml:"NetworkProtocol"`
	Description     string `yaml:"Description,omitempty"`
	MinPlayers      int    `yaml:"MinPlayers,omitempty"`
	MaxPlayers      int    `yaml:"MaxPlayers,omitempty"`
	Spectators      int    `yaml:"Spectators,omitempty"`
}

// Media is the manifest record for one media file (cover, icon, background).
// The binary payload lives at Media/<FileId> in the package, or at SourceUrl
// when syncing metadata without a package.
type Media struct {
	Id        uuid.UUID `yaml:"Id"`
	FileId    uuid.UUID `yaml:"FileId"`
	Type      string    `yaml:"Type"`
	SourceUrl string    `yaml:"SourceUrl,omitempty"`
	MimeType  string    `yaml:"MimeType,omitempty"`
	Crc32     string    `yaml:"Crc32,omitempty"`
	CreatedOn time.Time `yaml:"CreatedOn"`
	UpdatedOn time.Time `yaml:"UpdatedOn"`
}

// Archive is the manifest record for one versioned install archive.
// The payload lives at Archives/<ObjectKey> in the package.
type Archive struct {
	Id             uuid.UUID `yaml:"Id"`
	ObjectKey      string    `yaml:"ObjectKey"`
	Version        string    `yaml:"Version"`
	Changelog      string    `yaml:"Changelog,omitempty"`
	CompressedSize int64     `yaml:"CompressedSize,omitempty"`
	CreatedOn      time.Time `yaml:"CreatedOn"`
	UpdatedOn      time.Time `yaml:"UpdatedOn"`
}

// Script is the manifest record for one install/uninstall/key-change script.
// Contents live at Scripts/<Id> in the package.
type Script struct {
	Id            uuid.UUID `yaml:"Id"`
	Type          string    `yaml:"Type"`
	Name          string    `yaml:"Name"`
	RequiresAdmin bool      `yaml:"RequiresAdmin,omitempty"`
	CreatedOn     time.Time `yaml:"CreatedOn"`
	UpdatedOn     time.Time `yaml:"UpdatedOn"`
}

// Tool is the manifest record for a standalone tool shared by games.
type Tool struct {
	Id          uuid.UUID   `yaml:"Id"`
	Name        string      `yaml:"Name"`
	Description string      `yaml:"Description,omitempty"`
	CreatedOn   time.Time   `yaml:"CreatedOn"`
	UpdatedOn   time.Time   `yaml:"UpdatedOn"`
	Games       []uuid.UUID `yaml:"Games,omitempty"`
	Archives    []Archive   `yaml:"Archives,omitempty"`
	Scripts     []Script    `yaml:"Scripts,omitempty"`
}

// Server is the manifest record for a dedicated game server definition.
// Its working files travel under Files/ in the package.
type Server struct {
	Id               uuid.UUID `yaml:"Id"`
	Name             string    `yaml:"Name"`
	GameId           uuid.UUID `yaml:"GameId,omitempty"`
	Path             string    `yaml:"Path,omitempty"`
	Arguments        string    `yaml:"Arguments,omitempty"`
	WorkingDirectory string    `yaml:"WorkingDirectory,omitempty"`
	Host             string    `yaml:"Host,omitempty"`
	Port             int       `yaml:"Port,omitempty"`
	Autostart        bool      `yaml:"Autostart,omitempty"`
	CreatedOn        time.Time `yaml:"CreatedOn"`
	UpdatedOn        time.Time `yaml:"UpdatedOn"`
	Scripts          []Script  `yaml:"Scripts,omitempty"`
}

// Redistributable is the manifest record for a shared runtime dependency
// (DirectX, VC++ runtimes, ...). Matched locally by name.
type Redistributable struct {
	Name        string    `yaml:"Name"`
	Description string    `yaml:"Description,omitempty"`
	Notes       string    `yaml:"Notes,omitempty"`
	CreatedOn   time.Time `yaml:"CreatedOn"`
	UpdatedOn   time.Time `yaml:"UpdatedOn"`
	Archives    []Archive `yaml:"Archives,omitempty"`
	Scripts     []Script  `yaml:"Scripts,omitempty"`
}

// NameRecord is the derived record for lookup entities (collections,
// companies, engines, genres, platforms, tags). The owning manifest does not
// carry per-name timestamps, so the owner's clock is inherited.
type NameRecord struct {
	Name      string
	CreatedOn time.Time
	UpdatedOn time.Time
}

// Decode reads one YAML manifest record from r.
func Decode[T any](r io.Reader) (*T, error) {
	var rec T
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &rec, nil
}

// Encode writes rec to w as a YAML manifest.
func Encode(w io.Writer, rec any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return enc.Close()
}
