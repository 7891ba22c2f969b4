package dify

import "github.com/custodia-labs/dify-migrate/internal/core/domain"

// Wire shapes. Fields the migration does not consume are omitted; the server
// is free to send more.

type datasetDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	DocumentCount int    `json:"document_count"`
	WordCount     int    `json:"word_count"`
}

func (d datasetDTO) toDomain() domain.Dataset {
	return domain.Dataset{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		DocumentCount: d.DocumentCount,
		WordCount:     d.WordCount,
	}
}

type documentDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (d documentDTO) toDomain() domain.Document {
	return domain.Document{ID: d.ID, Name: d.Name}
}

type segmentDTO struct {
	Content  string   `json:"content"`
	Keywords []string `json:"keywords,omitempty"`
}

func (s segmentDTO) toDomain() domain.Segment {
	return domain.Segment{Content: s.Content, Keywords: s.Keywords}
}

type appDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	UpdatedAt string `json:"updated_at"`
}

func (a appDTO) toDomain() domain.App {
	return domain.App{ID: a.ID, Name: a.Name, Mode: a.Mode, UpdatedAt: a.UpdatedAt}
}

type datasetListResponse struct {
	Data    []datasetDTO `json:"data"`
	HasMore bool         `json:"has_more"`
}

type documentListResponse struct {
	Data    []documentDTO `json:"data"`
	HasMore bool          `json:"has_more"`
}

type segmentListResponse struct {
	Data []segmentDTO `json:"data"`
}

type appListResponse struct {
	Data    []appDTO `json:"data"`
	HasMore bool     `json:"has_more"`
}

type createDatasetRequest struct {
	Name        string `json:"name"`
	Permission  string `json:"permission"`
	Description string `json:"description,omitempty"`
}

type processRule struct {
	Mode  string         `json:"mode"`
	Rules map[string]any `json:"rules"`
}

type createDocumentRequest struct {
	Name              string      `json:"name"`
	Text              string      `json:"text"`
	IndexingTechnique string      `json:"indexing_technique"`
	ProcessRule       processRule `json:"process_rule"`
}

type createDocumentResponse struct {
	Document documentDTO `json:"document"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Data struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

type importAppRequest struct {
	Mode        string `json:"mode"`
	YAMLContent string `json:"yaml_content"`
}

type importAppResponse struct {
	Data struct {
		App appDTO `json:"app"`
	} `json:"data"`
}
