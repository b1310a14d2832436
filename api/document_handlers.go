package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mongoutils/internal/database"
	"mongoutils/internal/document"
	"mongoutils/internal/merge"
	"mongoutils/internal/persist"

	"github.com/danielgtaylor/huma/v2"
	"github.com/tidwall/gjson"
	"github.com/wI2L/jsondiff"
)

// MergeSettings configures how update requests are merged.
type MergeSettings struct {
	DefaultPolicy merge.Policy
	Options       []merge.Option
}

// DocumentHandlers handles document-related API requests.
type DocumentHandlers struct {
	store persist.Store
	merge MergeSettings
}

// NewDocumentHandlers registers document handlers with the API.
func NewDocumentHandlers(api huma.API, store persist.Store, settings MergeSettings) {
	h := &DocumentHandlers{
		store: store,
		merge: settings,
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-documents",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{collection}/documents",
		Summary:     "List documents",
		Description: "Lists the documents of a collection with pagination.",
		Tags:        []string{"Documents"},
	}, h.ListDocuments)

	huma.Register(api, huma.Operation{
		OperationID:   "create-document",
		Method:        http.MethodPost,
		Path:          "/api/v1/collections/{collection}/documents",
		Summary:       "Create a document",
		Description:   "Stores a new document. An ObjectID is assigned when _id is missing.",
		Tags:          []string{"Documents"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateDocument)

	huma.Register(api, huma.Operation{
		OperationID: "get-document",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{collection}/documents/{id}",
		Summary:     "Get a document",
		Description: "Retrieves a document by its ID, optionally populating a relation.",
		Tags:        []string{"Documents"},
	}, h.GetDocument)

	huma.Register(api, huma.Operation{
		OperationID: "replace-document",
		Method:      http.MethodPut,
		Path:        "/api/v1/collections/{collection}/documents/{id}",
		Summary:     "Replace a document",
		Description: "Merges the body with the replace policy: omitted fields are removed.",
		Tags:        []string{"Documents"},
	}, h.ReplaceDocument)

	huma.Register(api, huma.Operation{
		OperationID: "patch-document",
		Method:      http.MethodPatch,
		Path:        "/api/v1/collections/{collection}/documents/{id}",
		Summary:     "Patch a document",
		Description: "Merges the body with the patch policy: nested objects are merged, omitted fields are kept.",
		Tags:        []string{"Documents"},
	}, h.PatchDocument)

	huma.Register(api, huma.Operation{
		OperationID: "merge-document",
		Method:      http.MethodPost,
		Path:        "/api/v1/collections/{collection}/documents/{id}/merge",
		Summary:     "Merge into a document",
		Description: "Merges the body with the policy given in the query, or the configured default.",
		Tags:        []string{"Documents"},
	}, h.MergeDocument)

	huma.Register(api, huma.Operation{
		OperationID: "delete-document",
		Method:      http.MethodDelete,
		Path:        "/api/v1/collections/{collection}/documents/{id}",
		Summary:     "Delete a document",
		Description: "Deletes a document by its ID.",
		Tags:        []string{"Documents"},
	}, h.DeleteDocument)

	huma.Register(api, huma.Operation{
		OperationID: "get-document-field",
		Method:      http.MethodGet,
		Path:        "/api/v1/collections/{collection}/documents/{id}/fields/{path}",
		Summary:     "Get a document field",
		Description: "Returns the JSON value found at a dot path (e.g. profile.address.city).",
		Tags:        []string{"Documents"},
	}, h.GetField)
}

type DocumentPath struct {
	Collection string `path:"collection" doc:"The collection name"`
	ID         string `path:"id" doc:"The document ID; 24-hex IDs are treated as ObjectIDs"`
}

type ListDocumentsInput struct {
	Collection string `path:"collection" doc:"The collection name"`
	Offset     int    `query:"offset" doc:"The offset for pagination" default:"0" minimum:"0"`
	Limit      int    `query:"limit" doc:"The limit for pagination" default:"10" minimum:"1"`
}

type ListDocumentsOutput struct {
	Body []map[string]any
}

type CreateDocumentInput struct {
	Collection string `path:"collection" doc:"The collection name"`
	Body       map[string]any
}

type CreateDocumentOutput struct {
	Body struct {
		ID string `json:"id" doc:"The ID of the created document"`
	}
}

type GetDocumentInput struct {
	DocumentPath
	Populate string `query:"populate" doc:"Field holding the reference(s) to populate"`
	From     string `query:"from" doc:"Collection the references point to"`
	Select   string `query:"select" doc:"Comma-separated fields to copy from referenced documents"`
	In       string `query:"in" doc:"Dot path to the object or array holding the reference field"`
}

type GetDocumentOutput struct {
	Body map[string]any
}

type UpdateDocumentInput struct {
	DocumentPath
	Body map[string]any
}

type MergeDocumentInput struct {
	DocumentPath
	Policy string `query:"policy" doc:"Merge policy; defaults to the configured policy"`
	Body   map[string]any
}

type UpdateDocumentOutput struct {
	Body struct {
		Document map[string]any `json:"document" doc:"The stored document after the merge"`
		Changes  jsondiff.Patch `json:"changes" doc:"RFC 6902 operations turning the previous document into the stored one"`
	}
}

type DeleteDocumentOutput struct {
	Status int
}

type GetFieldInput struct {
	DocumentPath
	Path string `path:"path" doc:"Dot path of the field"`
}

type GetFieldOutput struct {
	ContentType string `header:"Content-Type"`
	Body        json.RawMessage
}

// ListDocuments lists the documents of a collection.
func (h *DocumentHandlers) ListDocuments(ctx context.Context, input *ListDocumentsInput) (*ListDocumentsOutput, error) {
	docs, err := h.store.List(ctx, input.Collection, input.Offset, input.Limit)
	if err != nil {
		slog.Error("ListDocuments: Failed to list documents", "collection", input.Collection, "error", err)
		return nil, huma.Error500InternalServerError(err.Error())
	}

	return &ListDocumentsOutput{Body: document.LeanAll(docs)}, nil
}

// CreateDocument stores a new document.
func (h *DocumentHandlers) CreateDocument(ctx context.Context, input *CreateDocumentInput) (*CreateDocumentOutput, error) {
	doc := document.New(input.Collection, document.ParseIDs(input.Body))

	if _, err := persist.Save(ctx, h.store, doc).Wait(ctx); err != nil {
		slog.Error("CreateDocument: Failed to persist document", "collection", input.Collection, "error", err)
		return nil, huma.Error500InternalServerError(err.Error())
	}

	resp := &CreateDocumentOutput{}
	resp.Body.ID = doc.IDString()
	slog.Info("CreateDocument: Successfully created document", "collection", input.Collection, "id", resp.Body.ID)
	return resp, nil
}

// GetDocument retrieves a document by ID.
func (h *DocumentHandlers) GetDocument(ctx context.Context, input *GetDocumentInput) (*GetDocumentOutput, error) {
	doc, err := h.load(ctx, "GetDocument", input.DocumentPath)
	if err != nil {
		return nil, err
	}

	if input.Populate != "" {
		if input.From == "" {
			return nil, huma.Error400BadRequest("'from' is required when 'populate' is set")
		}
		opts := persist.PopulateOptions{
			ObjPath:    input.In,
			Path:       input.Populate,
			Collection: input.From,
			Select:     splitFields(input.Select),
		}
		if _, err := persist.Populate(h.store, opts)(ctx, doc).Wait(ctx); err != nil {
			var pathErr *persist.PathError
			if errors.As(err, &pathErr) {
				return nil, huma.Error400BadRequest(err.Error())
			}
			slog.Error("GetDocument: Failed to populate relation", "collection", input.Collection, "id", input.ID, "populate", input.Populate, "error", err)
			return nil, huma.Error500InternalServerError(err.Error())
		}
	}

	return &GetDocumentOutput{Body: doc.ToObject()}, nil
}

// ReplaceDocument merges the body with the replace policy.
func (h *DocumentHandlers) ReplaceDocument(ctx context.Context, input *UpdateDocumentInput) (*UpdateDocumentOutput, error) {
	return h.update(ctx, "ReplaceDocument", input.DocumentPath, input.Body, merge.Replace)
}

// PatchDocument merges the body with the patch policy.
func (h *DocumentHandlers) PatchDocument(ctx context.Context, input *UpdateDocumentInput) (*UpdateDocumentOutput, error) {
	return h.update(ctx, "PatchDocument", input.DocumentPath, input.Body, merge.Patch)
}

// MergeDocument merges the body with the requested or default policy.
func (h *DocumentHandlers) MergeDocument(ctx context.Context, input *MergeDocumentInput) (*UpdateDocumentOutput, error) {
	policy := h.merge.DefaultPolicy
	if input.Policy != "" {
		p, err := merge.ParsePolicy(input.Policy)
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}
		policy = p
	}
	return h.update(ctx, "MergeDocument", input.DocumentPath, input.Body, policy)
}

// DeleteDocument deletes a document by ID.
func (h *DocumentHandlers) DeleteDocument(ctx context.Context, input *DocumentPath) (*DeleteDocumentOutput, error) {
	doc := document.New(input.Collection, map[string]any{document.IDField: document.ParseID(input.ID)})
	if _, err := persist.Remove(ctx, h.store, doc).Wait(ctx); err != nil {
		return nil, storeError("DeleteDocument", input, err)
	}

	return &DeleteDocumentOutput{Status: http.StatusNoContent}, nil
}

// GetField returns the raw JSON value at a dot path.
func (h *DocumentHandlers) GetField(ctx context.Context, input *GetFieldInput) (*GetFieldOutput, error) {
	doc, err := h.load(ctx, "GetField", input.DocumentPath)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(doc.ToObject())
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to encode document: " + err.Error())
	}

	value := gjson.GetBytes(data, input.Path)
	if !value.Exists() {
		return nil, huma.Error404NotFound("field not found: " + input.Path)
	}
	return &GetFieldOutput{ContentType: "application/json", Body: json.RawMessage(value.Raw)}, nil
}

func (h *DocumentHandlers) update(ctx context.Context, op string, path DocumentPath, payload map[string]any, policy merge.Policy) (*UpdateDocumentOutput, error) {
	doc, err := h.load(ctx, op, path)
	if err != nil {
		return nil, err
	}

	before := doc.ToObject()
	doc.Merge(document.ParseIDs(payload), policy, h.merge.Options...)

	if _, err := persist.Save(ctx, h.store, doc).Wait(ctx); err != nil {
		slog.Error(op+": Failed to save document", "collection", path.Collection, "id", path.ID, "error", err)
		return nil, huma.Error500InternalServerError(err.Error())
	}

	after := doc.ToObject()
	changes, err := jsondiff.Compare(before, after)
	if err != nil {
		slog.Warn(op+": Failed to compute changes", "collection", path.Collection, "id", path.ID, "error", err)
	}

	if changes == nil {
		changes = jsondiff.Patch{}
	}

	resp := &UpdateDocumentOutput{}
	resp.Body.Document = after
	resp.Body.Changes = changes
	slog.Info(op+": Successfully merged document", "collection", path.Collection, "id", path.ID, "policy", policy.String(), "changes", len(changes))
	return resp, nil
}

func (h *DocumentHandlers) load(ctx context.Context, op string, path DocumentPath) (*document.Document, error) {
	doc, err := h.store.Get(ctx, path.Collection, document.ParseID(path.ID))
	if err != nil {
		return nil, storeError(op, &path, err)
	}
	return doc, nil
}

func storeError(op string, path *DocumentPath, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		slog.Warn(op+": Document not found", "collection", path.Collection, "id", path.ID)
		return huma.Error404NotFound(err.Error())
	}
	slog.Error(op+": Store failure", "collection", path.Collection, "id", path.ID, "error", err)
	return huma.Error500InternalServerError(err.Error())
}

func splitFields(s string) []string {
	var fields []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}
