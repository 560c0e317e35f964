package apiclient

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status string `json:"status"`
}

// ============================================================================
// Credentials
// ============================================================================

// Credentials are storage-layer access keys issued to the signed-in user.
type Credentials struct {
	AccessKeyID     string     `json:"access_key_id"`
	SecretAccessKey string     `json:"secret_access_key,omitempty"`
	CreationDate    *time.Time `json:"creation_date,omitempty"`
}

// ============================================================================
// Datasets
// ============================================================================

// DataInstanceType classifies the samples a dataset holds.
type DataInstanceType string

const (
	DataInstanceImage    DataInstanceType = "image"
	DataInstanceDocument DataInstanceType = "document"
)

type Dataset struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Username         string           `json:"username"`
	Description      string           `json:"description,omitempty"`
	DataInstanceType DataInstanceType `json:"data_instance_type,omitempty"`
	RepoID           string           `json:"repo_id"`
	DefaultBranch    string           `json:"default_branch"`
	IsPublic         bool             `json:"is_public"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type DatasetCreate struct {
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	DataInstanceType DataInstanceType `json:"data_instance_type,omitempty"`
	DefaultBranch    string           `json:"default_branch"`
	IsPublic         bool             `json:"is_public"`
}

// ============================================================================
// Models
// ============================================================================

type TaskType string

const (
	TaskTypeImageClassification    TaskType = "image_classification"
	TaskTypeSequenceClassification TaskType = "sequence_classification"
	TaskTypeTokenClassification    TaskType = "token_classification"
	TaskTypeLayoutAnalysis         TaskType = "layout_analysis"
	TaskTypeQuestionAnswering      TaskType = "visual_question_answering"
)

type Model struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username"`
	Description   string    `json:"description,omitempty"`
	TaskType      TaskType  `json:"task_type"`
	RepoID        string    `json:"repo_id"`
	DefaultBranch string    `json:"default_branch"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ModelCreate struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	TaskType      TaskType `json:"task_type"`
	DefaultBranch string   `json:"default_branch"`
	IsPublic      bool     `json:"is_public"`
}

// ============================================================================
// Tasks
// ============================================================================

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

type Task struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Username         string         `json:"username"`
	Type             string         `json:"type"`
	Status           TaskStatus     `json:"status"`
	Progress         float64        `json:"progress"` // fraction in [0, 1]
	ConfigSnapshotID *uuid.UUID     `json:"config_snapshot_id,omitempty"`
	Result           map[string]any `json:"result,omitempty"`
	Error            string         `json:"error,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Status   *TaskStatus    `json:"status,omitempty"`
	Progress *float64       `json:"progress,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
	Error    *string        `json:"error,omitempty"`
}

// ============================================================================
// Config snapshots
// ============================================================================

type ConfigSnapshot struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Username  string         `json:"username"`
	Hash      string         `json:"hash,omitempty"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// ============================================================================
// Evaluations
// ============================================================================

type EvaluationExperiment struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	DatasetID         uuid.UUID `json:"dataset_id"`
	DatasetBranch     string    `json:"dataset_branch"`
	DatasetConfigName string    `json:"dataset_config_name"`
	DatasetSplit      string    `json:"dataset_split"`
	ModelID           uuid.UUID `json:"model_id"`
	ModelBranch       string    `json:"model_branch"`
	ModelConfigName   string    `json:"model_config_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// EvaluationExperimentGetOrCreate is the natural key of an evaluation; the
// backend resolves it atomically.
type EvaluationExperimentGetOrCreate struct {
	DatasetID         uuid.UUID `json:"dataset_id"`
	DatasetBranch     string    `json:"dataset_branch"`
	DatasetConfigName string    `json:"dataset_config_name"`
	DatasetSplit      string    `json:"dataset_split"`
	ModelID           uuid.UUID `json:"model_id"`
	ModelBranch       string    `json:"model_branch"`
	ModelConfigName   string    `json:"model_config_name"`
}

type SampleEvaluation struct {
	SampleIndex int            `json:"sample_index"`
	Data        map[string]any `json:"data"`
}

type EvaluationMetric struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// SampleExplanationWrite is the multipart body of a sample explanation upload.
type SampleExplanationWrite struct {
	Name        string
	ConfigID    uuid.UUID
	ConfigHash  string
	SampleIndex int
	Metadata    map[string]any
	Payload     []byte
}

type SampleExplanation struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	ConfigID    uuid.UUID      `json:"config_id"`
	ConfigHash  string         `json:"config_hash"`
	SampleIndex int            `json:"sample_index"`
	Metadata    map[string]any `json:"explanation_metadata,omitempty"`
	FileURL     string         `json:"explanation_file_url,omitempty"`
}

type SampleExplanationMetric struct {
	Name       string         `json:"name"`
	ConfigID   uuid.UUID      `json:"config_id"`
	ConfigHash string         `json:"config_hash"`
	Data       map[string]any `json:"data"`
}

// SampleExplanationMetricsQuery filters a metrics read. Nil IDs are omitted.
type SampleExplanationMetricsQuery struct {
	SampleIndex         int
	SampleExplanationID *uuid.UUID
	ConfigID            *uuid.UUID
}
