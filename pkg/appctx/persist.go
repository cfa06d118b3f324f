package appctx

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Load restores a context from store. Missing or corrupt keys leave the
// matching state empty; the user and token are restored together or not at
// all. Only a store read failure is returned.
func Load(store Store, logger *zap.Logger) (*Context, error) {
	app := New(logger)
	if store == nil {
		return app, nil
	}

	var user User
	userOK, err := getJSON(store, KeyUser, &user)
	if isReadError(err) {
		return nil, err
	}
	if err != nil {
		app.logger.Warn("discarding persisted user", zap.Error(err))
		userOK = false
	}
	var token string
	tokenOK, err := getJSON(store, KeyToken, &token)
	if isReadError(err) {
		return nil, err
	}
	if err != nil {
		app.logger.Warn("discarding persisted token", zap.Error(err))
		tokenOK = false
	}
	if userOK && tokenOK && user.ID != "" {
		app.SignIn(user, token)
	}

	tabs := map[string]string{}
	if _, err := getJSON(store, KeyTabs, &tabs); isReadError(err) {
		return nil, err
	} else if err != nil {
		app.logger.Warn("discarding persisted tabs", zap.Error(err))
	}
	for section, tab := range tabs {
		app.SetTab(section, tab)
	}
	return app, nil
}

// Save writes the context to store. A signed-out context deletes the auth
// keys.
func (c *Context) Save(store Store) error {
	if store == nil {
		return nil
	}
	if user, ok := c.User(); ok {
		if err := putJSON(store, KeyUser, user); err != nil {
			return err
		}
		if err := putJSON(store, KeyToken, c.Token()); err != nil {
			return err
		}
	} else {
		for _, key := range []string{KeyUser, KeyToken} {
			if err := store.Delete(key); err != nil {
				return fmt.Errorf("appctx: delete %s: %w", key, err)
			}
		}
	}
	return putJSON(store, KeyTabs, c.Tabs())
}

type readError struct{ err error }

func (e readError) Error() string { return e.err.Error() }
func (e readError) Unwrap() error { return e.err }

func isReadError(err error) bool {
	var target readError
	return errors.As(err, &target)
}

func getJSON(store Store, key string, dest any) (bool, error) {
	raw, ok, err := store.Get(key)
	if err != nil {
		return false, readError{fmt.Errorf("appctx: get %s: %w", key, err)}
	}
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("appctx: decode %s: %w", key, err)
	}
	return true, nil
}

func putJSON(store Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("appctx: encode %s: %w", key, err)
	}
	if err := store.Put(key, raw); err != nil {
		return fmt.Errorf("appctx: put %s: %w", key, err)
	}
	return nil
}
