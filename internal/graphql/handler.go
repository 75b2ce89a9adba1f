package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

type Handler struct {
	schema graphql.Schema
	logger *zap.Logger
}

func NewHandler(orders OrderService, logger *zap.Logger) (*Handler, error) {
	schema, err := NewSchema(orders)
	if err != nil {
		return nil, err
	}
	return &Handler{schema: schema, logger: logger}, nil
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// ServeHTTP executes a single POSTed operation. Errors travel inside the
// GraphQL result body per convention, not as HTTP status codes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"errors":[{"message":"invalid JSON body"}]}`, http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        r.Context(),
	})

	if len(result.Errors) > 0 {
		h.logger.Debug("graphql operation returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("errorCount", len(result.Errors)))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("encoding graphql response", zap.Error(err))
	}
}
