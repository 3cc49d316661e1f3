package pagination

// QueryParams is what the repository query needs: a LIMIT and an OFFSET.
type QueryParams struct {
	Offset int
	Limit  int
}

// Metadata describes the page a response carries.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Response wraps a page of items together with its Metadata.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// NewResponse builds the paginated response envelope.
func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	return Response[T]{Data: data, Pagination: metadata}
}

// OffsetStrategy translates 1-based page selection into LIMIT/OFFSET queries.
type OffsetStrategy struct{}

// CalculateQuery converts Params into the repository query window.
// Page 1 starts at offset 0.
func (OffsetStrategy) CalculateQuery(params Params) QueryParams {
	return QueryParams{
		Offset: (params.Page - 1) * params.Limit,
		Limit:  params.Limit,
	}
}

// BuildMetadata computes the response metadata for a page. An empty result
// set still reports one page so clients never see total_pages of zero.
func (OffsetStrategy) BuildMetadata(params Params, total int64) Metadata {
	return Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages(total, params.Limit),
	}
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
