package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/rootmarks/rootmarks-server/internal/domain"
	"github.com/rootmarks/rootmarks-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the reader's books, newest first",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Add book",
		Description:   "Adds a book to the reader's garden with status reading",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns one of the reader's books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookProgress",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}/progress",
		Summary:     "Update progress",
		Description: "Records pages read. Values above the page count are clamped; finished books are rejected.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookRating",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}/rating",
		Summary:     "Update rating",
		Description: "Sets a rating from 0 (unrated) to 5",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRating)

	huma.Register(s.api, huma.Operation{
		OperationID: "finishBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/finish",
		Summary:     "Finish book",
		Description: "Marks the book finished, credits XP and awards newly earned badges",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleFinishBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Removes a book. XP and totals already earned are kept.",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// === DTOs ===

// ListBooksResponse contains the reader's books.
type ListBooksResponse struct {
	Books []*domain.Book `json:"books" doc:"Books, newest first"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// AddBookRequest is the request body for adding a book.
type AddBookRequest struct {
	Title      string `json:"title" maxLength:"300" doc:"Book title"`
	Author     string `json:"author" maxLength:"200" doc:"Author name"`
	TotalPages int    `json:"total_pages" doc:"Page count, greater than zero"`
	CoverURL   string `json:"cover_url,omitempty" required:"false" maxLength:"2048" doc:"Cover image URL"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Authorization string `header:"Authorization"`
	Body          AddBookRequest
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// BookPathInput addresses one book.
type BookPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// UpdateProgressRequest is the request body for recording progress.
type UpdateProgressRequest struct {
	PagesRead int `json:"pages_read" doc:"Pages read so far"`
}

// UpdateProgressInput wraps the progress request for Huma.
type UpdateProgressInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateProgressRequest
}

// UpdateRatingRequest is the request body for rating a book.
type UpdateRatingRequest struct {
	Rating int `json:"rating" doc:"0 (unrated) to 5"`
}

// UpdateRatingInput wraps the rating request for Huma.
type UpdateRatingInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateRatingRequest
}

// FinishBookOutput wraps the completion result for Huma.
type FinishBookOutput struct {
	Body *service.FinishResult
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *AuthInput) (*ListBooksOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Book.ListBooks(ctx, userID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*domain.Book{}
	}

	return &ListBooksOutput{Body: ListBooksResponse{Books: books}}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.AddBook(ctx, userID, service.AddBookInput{
		Title:      input.Body.Title,
		Author:     input.Body.Author,
		TotalPages: input.Body.TotalPages,
		CoverURL:   input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookPathInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.GetBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *UpdateProgressInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateProgress(ctx, userID, input.ID, input.Body.PagesRead)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleUpdateRating(ctx context.Context, input *UpdateRatingInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.UpdateRating(ctx, userID, input.ID, input.Body.Rating)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: book}, nil
}

func (s *Server) handleFinishBook(ctx context.Context, input *BookPathInput) (*FinishBookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Book.FinishBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &FinishBookOutput{Body: result}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookPathInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.DeleteBook(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
