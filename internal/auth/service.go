package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Service struct {
	hmac []byte
	ttl  time.Duration
}

func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Service{hmac: []byte(secret), ttl: ttl}
}

type Claims struct {
	Sub       string `json:"sub"`
	Username  string `json:"username"`
	Role      string `json:"role"` // "teacher" or "student"
	ProfileID string `json:"profile_id"`
	jwt.RegisteredClaims
}

func (s *Service) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:       id.UserID,
		Username:  id.Username,
		Role:      id.Role,
		ProfileID: id.ProfileID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campusd",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.hmac)
}

func (s *Service) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}
