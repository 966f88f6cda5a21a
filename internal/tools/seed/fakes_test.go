package seed

import (
	"context"
	"fmt"

	"github.com/ashmont/clientdocs/internal/services/documents/domain"
	docservice "github.com/ashmont/clientdocs/internal/services/documents/service"
	idstorage "github.com/ashmont/clientdocs/internal/services/identity/storage"
)

// fakeStaffRegistrar records staff registrations with deterministic IDs.
type fakeStaffRegistrar struct {
	users []idstorage.StaffUser
	err   error
}

func (f *fakeStaffRegistrar) RegisterStaff(_ context.Context, name, email string) (idstorage.StaffUser, error) {
	if f.err != nil {
		return idstorage.StaffUser{}, f.err
	}
	user := idstorage.StaffUser{ID: fmt.Sprintf("st-%d", len(f.users)+1), Name: name, Email: email}
	f.users = append(f.users, user)
	return user, nil
}

// fakeClientCreator records roster writes with deterministic IDs.
type fakeClientCreator struct {
	clients []domain.Client
	actors  []string
	err     error
}

func (f *fakeClientCreator) CreateClient(_ context.Context, input domain.CreateClientInput, actorID string) (domain.Client, error) {
	if f.err != nil {
		return domain.Client{}, f.err
	}
	client := domain.Client{
		ID:     fmt.Sprintf("cl-%d", len(f.clients)+1),
		Name:   input.Name,
		Email:  input.Email,
		Locale: input.Locale,
	}
	f.clients = append(f.clients, client)
	f.actors = append(f.actors, actorID)
	return client, nil
}

type statusTransition struct {
	requestID string
	status    string
	actorID   string
}

// fakeRequestSeeder records request writes and status transitions.
type fakeRequestSeeder struct {
	created     []docservice.CreateDocumentRequestInput
	transitions []statusTransition
	createErr   error
	statusErr   error
}

func (f *fakeRequestSeeder) CreateDocumentRequest(_ context.Context, input docservice.CreateDocumentRequestInput) (domain.DocumentRequest, error) {
	if f.createErr != nil {
		return domain.DocumentRequest{}, f.createErr
	}
	f.created = append(f.created, input)
	return domain.DocumentRequest{
		ID:        fmt.Sprintf("req-%d", len(f.created)),
		ClientID:  input.ClientID,
		Title:     input.Title,
		Status:    domain.RequestStatusOpen,
		CreatedBy: input.CreatedBy,
	}, nil
}

func (f *fakeRequestSeeder) SetDocumentRequestStatus(_ context.Context, requestID, status, actorID string) (domain.DocumentRequest, error) {
	if f.statusErr != nil {
		return domain.DocumentRequest{}, f.statusErr
	}
	f.transitions = append(f.transitions, statusTransition{requestID: requestID, status: status, actorID: actorID})
	return domain.DocumentRequest{ID: requestID, Status: domain.RequestStatus(status)}, nil
}
