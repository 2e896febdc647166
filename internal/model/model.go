package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SimvisInfo{},
	&Session{},
	&Entity{},
	&Frame{},
	&SyncPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// SimvisInfo describes the instance that produced the recordings
type SimvisInfo struct {
	gorm.Model
	InstanceName string `json:"instanceName" gorm:"size:127"`
	Description  string `json:"description" gorm:"size:255"`
}

func (*SimvisInfo) TableName() string {
	return "simvis_infos"
}

// SyncPerformance is one tick of orchestrator statistics
type SyncPerformance struct {
	Time           time.Time `json:"time" gorm:"index:idx_syncperformance_time"`
	SessionID      uint      `json:"sessionId" gorm:"index:idx_syncperformance_session_id"`
	Session        Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	SimTime        float64   `json:"simTime"`
	Entities       int       `json:"entities"`
	Applied        int       `json:"applied"`
	FrameQueue     int       `json:"frameQueue"`
	TickDurationMs float32   `json:"tickDurationMs"`
}

func (*SyncPerformance) TableName() string {
	return "sync_performances"
}

////////////////////////
// RECORDING MODELS
////////////////////////

// Session is one recorded synchronization run
type Session struct {
	gorm.Model
	Name             string    `json:"name" gorm:"size:127"`
	StartTime        time.Time `json:"startTime"`
	ExtensionVersion string    `json:"extensionVersion" gorm:"size:64"`
}

func (*Session) TableName() string {
	return "sessions"
}

// Entity is a render entity materialized during a session
type Entity struct {
	gorm.Model
	SessionID uint    `json:"sessionId" gorm:"index:idx_entity_session_id"`
	Session   Session `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:SessionID;"`
	ObjectID  uint64  `json:"objectId" gorm:"index:idx_entity_object_id"`
	Kind      string  `json:"kind" gorm:"size:16"`
	HostID    uint64  `json:"hostId"`
	Name      string  `json:"name" gorm:"size:127"`
	Handle    uint32  `json:"handle"`
}

func (*Entity) TableName() string {
	return "entities"
}

// Frame is the state of one entity at one simulation time
type Frame struct {
	ID           uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	SessionID    uint           `json:"sessionId" gorm:"index:idx_frame_session_id"`
	ObjectID     uint64         `json:"objectId" gorm:"index:idx_frame_object_id"`
	Time         float64        `json:"time" gorm:"index:idx_frame_time"`
	HasPosition  bool           `json:"hasPosition"`
	Position     geom.Point     `json:"position"`
	Rotation     datatypes.JSON `json:"rotation"`
	Label        string         `json:"label" gorm:"size:127"`
	IconSize     float64        `json:"iconSize"`
	LineVertices int            `json:"lineVertices"`
	LineWKT      string         `json:"lineWkt" gorm:"type:text"`
}

func (*Frame) TableName() string {
	return "frames"
}
