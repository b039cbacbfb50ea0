package http

import (
	"net/http"
	"strings"

	"github.com/foodbridge/foodbridge/auth"
	"github.com/foodbridge/foodbridge/types"
)

type registerReqBody struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DisplayName string     `json:"displayName"`
	Role        types.Role `json:"role"`
	Phone       *string    `json:"phone"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var in registerReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.svc.Register(r.Context(), types.Register{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
		Role:        in.Role,
		Phone:       in.Phone,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusCreated)
}

type loginReqBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	out, err := h.svc.Login(r.Context(), types.Login{
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, out, http.StatusOK)
}

func (h *handler) authUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.AuthUser(r.Context())
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, u, http.StatusOK)
}

type updateProfileReqBody struct {
	DisplayName *string `json:"displayName"`
	Phone       *string `json:"phone"`
}

func (h *handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in updateProfileReqBody
	if err := decodeJSON(r, &in); err != nil {
		h.respondErr(w, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), types.UpdateProfile{
		DisplayName: in.DisplayName,
		Phone:       in.Phone,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}

	h.respond(w, u, http.StatusOK)
}

// withAuth puts the token owner in the request context. Requests without
// a token continue anonymously; EventSource clients that cannot set
// headers may pass the token as the auth_token query parameter.
func (h *handler) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		user, err := h.svc.UserFromToken(ctx, token)
		if err != nil {
			h.respondErr(w, err)
			return
		}

		ctx = auth.ContextWithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(a, "Bearer ") {
		return strings.TrimSpace(a[len("Bearer "):])
	}

	return r.URL.Query().Get("auth_token")
}
