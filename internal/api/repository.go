package api

import (
	"context"

	"rhystmorgan/phonebook/internal/models"
)

// Repository exposes the contacts API in terms of models.Contact.
type Repository struct {
	client *Client
}

func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) GetAll(ctx context.Context) ([]models.Contact, error) {
	users, err := r.client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, ToContact(u))
	}
	return contacts, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.Contact, error) {
	u, err := r.client.GetUser(ctx, id)
	if err != nil {
		return models.Contact{}, err
	}
	return ToContact(*u), nil
}

// Create uploads photoPath first when it is set and then creates the record.
// The uploaded URL wins over contact.PhotoURL.
func (r *Repository) Create(ctx context.Context, contact models.Contact, photoPath string) (models.Contact, error) {
	req, err := r.request(ctx, contact, photoPath)
	if err != nil {
		return models.Contact{}, err
	}

	u, err := r.client.CreateUser(ctx, req)
	if err != nil {
		return models.Contact{}, err
	}
	return ToContact(*u), nil
}

func (r *Repository) Update(ctx context.Context, contact models.Contact, photoPath string) (models.Contact, error) {
	req, err := r.request(ctx, contact, photoPath)
	if err != nil {
		return models.Contact{}, err
	}

	u, err := r.client.UpdateUser(ctx, contact.ID, req)
	if err != nil {
		return models.Contact{}, err
	}
	return ToContact(*u), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.client.DeleteUser(ctx, id)
}

func (r *Repository) request(ctx context.Context, contact models.Contact, photoPath string) (UserRequest, error) {
	imageURL := contact.PhotoURL
	if photoPath != "" {
		uploaded, err := r.client.UploadImage(ctx, photoPath)
		if err != nil {
			return UserRequest{}, err
		}
		imageURL = uploaded
	}

	return UserRequest{
		FirstName:       contact.FirstName,
		LastName:        contact.LastName,
		PhoneNumber:     contact.Phone,
		ProfileImageURL: imageURL,
	}, nil
}

// ToContact maps a remote user. IsInDevice is always false here; the store
// annotates it.
func ToContact(u UserDTO) models.Contact {
	return models.Contact{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.PhoneNumber,
		PhotoURL:  u.ProfileImageURL,
	}
}
