package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/LucaMelis0/secure-chat/auth"
	"github.com/LucaMelis0/secure-chat/hub"
	"github.com/LucaMelis0/secure-chat/protocol"
	"github.com/LucaMelis0/secure-chat/repositories"
	ws "github.com/LucaMelis0/secure-chat/websocket"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func loginHandler(authService *auth.Service, tokens *auth.TokenManager, manager *hub.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}

		if err := authService.Verify(creds); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
				return
			}
			slog.Error("verify credentials", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		// Mirrors the websocket admission check so the collision is
		// reported before the client ever opens a socket.
		if manager.IsOnline(creds.Username) {
			writeJSON(w, http.StatusConflict,
				map[string]string{"error": "user already connected from another device"})
			return
		}

		token, err := tokens.Issue(creds.Username)
		if err != nil {
			slog.Error("issue token", "username", creds.Username, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

func registerHandler(authService *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds auth.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
			return
		}

		err := authService.Register(creds)
		var validationErrs validator.ValidationErrors
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
		case errors.Is(err, repositories.ErrUserExists):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "username already exists"})
		case errors.As(err, &validationErrs):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid username or password format"})
		default:
			slog.Error("register user", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}
}

func wsHandler(manager *hub.Manager, handler *protocol.Handler, tokens *auth.TokenManager, sendBuffer int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrade error", "error", err)
			return
		}

		clientID := r.PathValue("client_id")
		claims, err := tokens.Validate(r.URL.Query().Get("token"))
		if err != nil || clientID == "" {
			rejectSocket(socket, "not authenticated")
			return
		}

		conn := ws.NewConn(clientID, claims.Username, socket, sendBuffer, manager, handler)
		if err := manager.Connect(conn); err != nil {
			conn.CloseWithReason(websocket.ClosePolicyViolation, "session already active")
			return
		}
		conn.Start()
	}
}

// rejectSocket refuses a handshake that never reached admission.
func rejectSocket(socket *websocket.Conn, reason string) {
	socket.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(5*time.Second))
	socket.Close()
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statsHandler(manager *hub.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients, rooms := manager.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"clients": clients, "private_rooms": rooms})
	}
}
