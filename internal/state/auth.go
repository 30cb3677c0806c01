package state

import "context"

// Token returns the stored API token, or "" when logged out.
func (m *Manager) Token() (string, error) {
	v, _, err := getValue(context.Background(), m.db, TokenKey)
	return v, err
}

// SaveToken stores the API token.
func (m *Manager) SaveToken(token string) error {
	return setValue(context.Background(), m.db, TokenKey, token)
}

// DeleteToken removes the stored API token.
func (m *Manager) DeleteToken() error {
	return deleteValue(context.Background(), m.db, TokenKey)
}
