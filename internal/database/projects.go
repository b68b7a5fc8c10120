package database

import (
	"database/sql"
	"errors"
	"fmt"

	"trl-backend/internal/models"
)

func (c *Client) CreateUser(user *models.User) (*models.User, error) {
	err := c.db.QueryRow(`
		INSERT INTO users (first_name, last_name, email, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, created_at
	`, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, user.Active).Scan(
		&user.ID, &user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (c *Client) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := c.db.QueryRow(`
		SELECT id, first_name, last_name, email, password_hash, role, active, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.PasswordHash, &user.Role, &user.Active, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (c *Client) CreateProject(project *models.Project) (*models.Project, error) {
	err := c.db.QueryRow(`
		INSERT INTO projects (user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, project.UserID, project.Name, project.Description).Scan(
		&project.ID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject fetches a project owned by the given user.
func (c *Client) GetProject(id, userID int) (*models.Project, error) {
	var project models.Project
	err := c.db.QueryRow(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Description,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

// GetProjectByID fetches a project regardless of ownership. Used by the
// report archiver, which runs outside any request.
func (c *Client) GetProjectByID(id int) (*models.Project, error) {
	var project models.Project
	err := c.db.QueryRow(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1
	`, id).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Description,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &project, nil
}

func (c *Client) ListProjects(userID int) ([]models.Project, error) {
	rows, err := c.db.Query(`
		SELECT id, user_id, name, description, created_at, updated_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		err := rows.Scan(
			&project.ID, &project.UserID, &project.Name, &project.Description,
			&project.CreatedAt, &project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}

func (c *Client) UpdateProject(id, userID int, name, description string) (*models.Project, error) {
	var project models.Project
	err := c.db.QueryRow(`
		UPDATE projects
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING id, user_id, name, description, created_at, updated_at
	`, name, description, id, userID).Scan(
		&project.ID, &project.UserID, &project.Name, &project.Description,
		&project.CreatedAt, &project.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return &project, nil
}

func (c *Client) DeleteProject(id, userID int) error {
	res, err := c.db.Exec(`
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}

	return nil
}
