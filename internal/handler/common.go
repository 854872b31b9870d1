package handler // handler defines http handlers

import (
    "errors"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/ateliermori/commission-api/internal/authz"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT numeric claims decode as float64; other representations are handled
// for robustness.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// currentActor builds the authz actor for the request from the claims the
// JWT middleware stored in context.  An error means the caller is not
// authenticated and should receive a 401.
func currentActor(c echo.Context) (authz.Actor, error) {
    id, err := getUserID(c)
    if err != nil {
        return authz.Actor{}, err
    }
    role := authz.RoleClient
    if s, ok := c.Get("role").(string); ok && s == string(authz.RoleAdmin) {
        role = authz.RoleAdmin
    }
    return authz.Actor{ID: id, Role: role}, nil
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}
