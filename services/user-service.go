package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/durmussoy/TaskManagementSystem/models"
	"github.com/durmussoy/TaskManagementSystem/utils"
)

type UserService struct {
	UserCollection *mongo.Collection
	RoleCollection *mongo.Collection
}

func NewUserService(userCollection, roleCollection *mongo.Collection) *UserService {
	return &UserService{
		UserCollection: userCollection,
		RoleCollection: roleCollection,
	}
}

// UserUpdate is the admin-side field-level merge for a user record.
type UserUpdate struct {
	Username *string
	Name     *string
	Password *string
}

// EnsureDefaultRoles upserts the fixed User and Admin roles so the
// collection is usable on a fresh database.
func (s *UserService) EnsureDefaultRoles(ctx context.Context) error {
	roles := []models.Role{
		{Name: models.RoleUser, Description: "Regular user with basic privileges"},
		{Name: models.RoleAdmin, Description: "Administrator with full access to all features"},
	}

	for _, role := range roles {
		filter := bson.M{"name": role.Name}
		update := bson.M{
			"$set":         bson.M{"description": role.Description},
			"$setOnInsert": bson.M{"name": role.Name, "createdAt": time.Now()},
		}
		opts := options.Update().SetUpsert(true)
		if _, err := s.RoleCollection.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to ensure role %s: %v", role.Name, err)
		}
	}
	return nil
}

// RegisterUser creates an account with the default User role and a bcrypt
// password hash.
func (s *UserService) RegisterUser(ctx context.Context, username, password, name string) (*models.User, error) {
	count, err := s.UserCollection.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %v", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	role, err := s.roleByName(ctx, models.RoleUser)
	if err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username:  username,
		Password:  hash,
		Name:      name,
		Role:      role.ID,
		CreatedAt: time.Now(),
	}

	result, err := s.UserCollection.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)

	return user, nil
}

// LoginUser verifies credentials and issues a one-day token carrying the
// user id.
func (s *UserService) LoginUser(ctx context.Context, username, password string) (*models.UserProfile, string, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to retrieve user: %v", err)
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %v", err)
	}

	profile, err := s.toProfile(ctx, &user)
	if err != nil {
		return nil, "", err
	}
	return profile, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toProfile(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.UserProfile, error) {
	cursor, err := s.UserCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for i := range users {
		profile, err := s.toProfile(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// UpdateUser is the admin path: username, name and password are all
// replaceable.
func (s *UserService) UpdateUser(ctx context.Context, userID primitive.ObjectID, upd UserUpdate) (*models.UserProfile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if upd.Username != nil {
		if *upd.Username == "" {
			return nil, NewValidationError("Username cannot be empty")
		}
		count, err := s.UserCollection.CountDocuments(ctx, bson.M{
			"username": *upd.Username,
			"_id":      bson.M{"$ne": userID},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %v", err)
		}
		if count > 0 {
			return nil, ErrUsernameTaken
		}
		set["username"] = *upd.Username
	}
	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, NewValidationError("Name cannot be empty")
		}
		set["name"] = *upd.Name
	}
	if upd.Password != nil {
		hash, err := utils.HashPassword(*upd.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %v", err)
		}
		set["password"] = hash
	}

	if len(set) > 0 {
		if _, err := s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": set}); err != nil {
			return nil, fmt.Errorf("failed to update user: %v", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

// UpdateProfile is the self-service path: only name and password.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, name, password *string) (*models.UserProfile, error) {
	return s.UpdateUser(ctx, userID, UserUpdate{Name: name, Password: password})
}

// ChangeRole assigns a role by name. Only reachable through the admin
// routes.
func (s *UserService) ChangeRole(ctx context.Context, userID primitive.ObjectID, roleName string) (*models.UserProfile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	role, err := s.roleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	if _, err := s.UserCollection.UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{"role": role.ID}}); err != nil {
		return nil, fmt.Errorf("failed to update user role: %v", err)
	}

	return s.GetProfile(ctx, userID)
}

// IsAdmin resolves the user's role reference and checks for Admin.
func (s *UserService) IsAdmin(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return false, err
	}

	var role models.Role
	err = s.RoleCollection.FindOne(ctx, bson.M{"_id": user.Role}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to retrieve role: %v", err)
	}
	return role.Name == models.RoleAdmin, nil
}

func (s *UserService) findUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.UserCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %v", err)
	}
	return &user, nil
}

func (s *UserService) roleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := s.RoleCollection.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve role: %v", err)
	}
	return &role, nil
}

func (s *UserService) toProfile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	roleName := ""
	var role models.Role
	err := s.RoleCollection.FindOne(ctx, bson.M{"_id": user.Role}).Decode(&role)
	if err == nil {
		roleName = role.Name
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to retrieve role: %v", err)
	}

	return &models.UserProfile{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     roleName,
	}, nil
}
