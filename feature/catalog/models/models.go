package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base holds the identity and clock fields shared by every catalog entity.
//
// CreatedOn and UpdatedOn are authored by the server that produced the record
// and travel with it in manifests. ImportedOn is purely local: it is stamped
// to the local clock every time the entity is successfully added or updated
// by an import, and is the watermark the sync feature checks eligibility
// against.
type Base struct {
	Id         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedOn  time.Time `json:"created_on"`
	UpdatedOn  time.Time `json:"updated_on"`
	ImportedOn time.Time `json:"imported_on"`
}

// Meta returns the entity's base fields. Promoted through embedding, it lets
// generic code reach identity and clocks without per-type accessors.
func (b *Base) Meta() *Base { return b }

// BeforeCreate assigns an id when the record was built locally (entities
// received via manifest keep their remote id).
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.Id == uuid.Nil {
		b.Id = uuid.New()
	}
	return nil
}

// Entity is implemented by every catalog model through Base embedding.
type Entity interface {
	Meta() *Base
}

// Lookup entities, matched by case-sensitive name.

type Collection struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Company struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Engine struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Genre struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Platform struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name"`
}

type Tag struct {
	Base
	Name string `gorm:"uniqueIndex" json:"name"`
}

// MultiplayerMode belongs to one game. Its natural key is the composite
// (NetworkProtocol, Type), not a name.
type MultiplayerMode struct {
	Base
	GameId          uuid.UUID `gorm:"type:char(36);index" json:"game_id"`
	Type            string    `json:"type"`
	NetworkProtocol string    `json:"network_protocol"`
	Description     string    `json:"description"`
	MinPlayers      int       `json:"min_players"`
	MaxPlayers      int       `json:"max_players"`
	Spectators      int       `json:"spectators"`
}

// Media belongs to exactly one game. FileId addresses the binary payload in
// object storage under media/<FileId>.
type Media struct {
	Base
	GameId    uuid.UUID `gorm:"type:char(36);index" json:"game_id"`
	FileId    uuid.UUID `gorm:"type:char(36);index" json:"file_id"`
	Type      string    `json:"type"`
	SourceUrl string    `json:"source_url"`
	MimeType  string    `json:"mime_type"`
	Crc32     string    `json:"crc32"`
}

// Archive is one versioned install archive, content-addressed in object
// storage by ObjectKey. It is owned by either a game or a redistributable.
type Archive struct {
	Base
	GameId            *uuid.UUID `gorm:"type:char(36);index" json:"game_id,omitempty"`
	ToolId            *uuid.UUID `gorm:"type:char(36);index" json:"tool_id,omitempty"`
	RedistributableId *uuid.UUID `gorm:"type:char(36);index" json:"redistributable_id,omitempty"`
	ObjectKey         string     `gorm:"index" json:"object_key"`
	Version           string     `json:"version"`
	Changelog         string     `json:"changelog"`
	CompressedSize    int64      `json:"compressed_size"`
}

// Script holds install/uninstall/key-change script contents. Owned by a game,
// a game server, or a redistributable.
type Script struct {
	Base
	GameId            *uuid.UUID `gorm:"type:char(36);index" json:"game_id,omitempty"`
	ToolId            *uuid.UUID `gorm:"type:char(36);index" json:"tool_id,omitempty"`
	ServerId          *uuid.UUID `gorm:"type:char(36);index" json:"server_id,omitempty"`
	RedistributableId *uuid.UUID `gorm:"type:char(36);index" json:"redistributable_id,omitempty"`
	Type              string     `json:"type"`
	Name              string     `json:"name"`
	RequiresAdmin     bool       `json:"requires_admin"`
	Contents          string     `json:"contents"`
}

// Game is the central catalog entity.
type Game struct {
	Base
	Title       string    `gorm:"index" json:"title"`
	SortTitle   string    `json:"sort_title"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
	ReleasedOn  time.Time `json:"released_on"`

	EngineId *uuid.UUID `gorm:"type:char(36)" json:"engine_id,omitempty"`
	Engine   *Engine    `json:"engine,omitempty"`

	Collections []Collection `gorm:"many2many:game_collections" json:"collections,omitempty"`
	Developers  []Company    `gorm:"many2many:game_developers" json:"developers,omitempty"`
	Publishers  []Company    `gorm:"many2many:game_publishers" json:"publishers,omitempty"`
	Genres      []Genre      `gorm:"many2many:game_genres" json:"genres,omitempty"`
	Tags        []Tag        `gorm:"many2many:game_tags" json:"tags,omitempty"`
	Platforms   []Platform   `gorm:"many2many:game_platforms" json:"platforms,omitempty"`

	MultiplayerModes []MultiplayerMode `json:"multiplayer_modes,omitempty"`
	Media            []Media           `json:"media,omitempty"`
	Archives         []Archive         `gorm:"foreignKey:GameId" json:"archives,omitempty"`
	Scripts          []Script          `gorm:"foreignKey:GameId" json:"scripts,omitempty"`
}

// Tool is a standalone utility associated with any number of games.
type Tool struct {
	Base
	Name        string    `gorm:"index" json:"name"`
	Description string    `json:"description"`
	Games       []Game    `gorm:"many2many:game_tools" json:"games,omitempty"`
	Archives    []Archive `gorm:"foreignKey:ToolId" json:"archives,omitempty"`
	Scripts     []Script  `gorm:"foreignKey:ToolId" json:"scripts,omitempty"`
}

// Server is a dedicated game server definition.
type Server struct {
	Base
	Name             string     `gorm:"index" json:"name"`
	GameId           *uuid.UUID `gorm:"type:char(36);index" json:"game_id,omitempty"`
	Path             string     `json:"path"`
	Arguments        string     `json:"arguments"`
	WorkingDirectory string     `json:"working_directory"`
	Host             string     `json:"host"`
	Port             int        `json:"port"`
	Autostart        bool       `json:"autostart"`
	Scripts          []Script   `gorm:"foreignKey:ServerId" json:"scripts,omitempty"`
}

// Redistributable is a shared runtime dependency, matched by name.
type Redistributable struct {
	Base
	Name        string    `gorm:"uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
	Archives    []Archive `gorm:"foreignKey:RedistributableId" json:"archives,omitempty"`
	Scripts     []Script  `gorm:"foreignKey:RedistributableId" json:"scripts,omitempty"`
}

// Library groups games for one launcher user. Imported games are registered
// in the importing library.
type Library struct {
	Base
	Name  string `gorm:"uniqueIndex" json:"name"`
	Games []Game `gorm:"many2many:library_games" json:"games,omitempty"`
}

// All lists every model for schema migration, in dependency order.
func All() []any {
	return []any{
		&Collection{}, &Company{}, &Engine{}, &Genre{}, &Platform{}, &Tag{},
		&Game{}, &MultiplayerMode{}, &Media{}, &Archive{}, &Script{},
		&Tool{}, &Server{}, &Redistributable{}, &Library{},
	}
}
