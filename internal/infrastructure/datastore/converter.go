package datastore

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	ds "github.com/ipfs/go-datastore"

	"github.com/SINTEF/entities-service/internal/domain/entity"
	"github.com/SINTEF/entities-service/internal/soft"
)

var (
	entitiesPrefix  = ds.NewKey("/entities")
	usersPrefix     = ds.NewKey("/users")
	usernamesPrefix = ds.NewKey("/usernames")
)

// coreSegment stands for the base namespace itself in entity keys
const coreSegment = "_"

// entityRecord is the stored form of an entity: its canonical JSON document
type entityRecord struct {
	URI         string                    `json:"uri"`
	Meta        string                    `json:"meta"`
	Description string                    `json:"description,omitempty"`
	Dimensions  map[string]string         `json:"dimensions"`
	Properties  map[string]propertyRecord `json:"properties"`
}

type propertyRecord struct {
	Type        string   `json:"type"`
	Shape       []string `json:"shape,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Description string   `json:"description,omitempty"`
	Ref         string   `json:"$ref,omitempty"`
}

type userRecord struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func encodeEntity(e *entity.Entity) ([]byte, error) {
	rec := entityRecord{
		URI:         e.URI(),
		Meta:        e.Meta,
		Description: e.Description,
		Dimensions:  e.Dimensions,
		Properties:  make(map[string]propertyRecord, len(e.Properties)),
	}
	if rec.Dimensions == nil {
		rec.Dimensions = map[string]string{}
	}
	for name, p := range e.Properties {
		rec.Properties[name] = propertyRecord{
			Type:        p.Type,
			Shape:       p.Shape,
			Unit:        p.Unit,
			Description: p.Description,
			Ref:         p.Ref,
		}
	}
	return sonic.Marshal(rec)
}

func decodeEntity(data []byte) (*entity.Entity, error) {
	var rec entityRecord
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	id, err := soft.ParseIdentity(rec.URI)
	if err != nil {
		return nil, fmt.Errorf("stored entity has a bad uri: %w", err)
	}

	e := &entity.Entity{
		Identity:    id,
		Meta:        rec.Meta,
		Description: rec.Description,
		Dimensions:  rec.Dimensions,
		Properties:  make(map[string]entity.Property, len(rec.Properties)),
	}
	if e.Dimensions == nil {
		e.Dimensions = map[string]string{}
	}
	for name, p := range rec.Properties {
		e.Properties[name] = entity.Property{
			Type:        p.Type,
			Shape:       p.Shape,
			Unit:        p.Unit,
			Description: p.Description,
			Ref:         p.Ref,
		}
	}
	return e, nil
}

func toUserRecord(u *entity.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		LastLoginAt:  u.LastLoginAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUserEntity(r userRecord) *entity.User {
	return &entity.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		LastLoginAt:  r.LastLoginAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// escapeSegment makes s a single key segment that survives key cleaning
func escapeSegment(s string) string {
	e := url.PathEscape(s)
	if strings.Trim(e, ".") == "" {
		e = strings.ReplaceAll(e, ".", "%2E")
	}
	return e
}

// namespaceSegment encodes a specific namespace; "_" is reserved for the core namespace
func namespaceSegment(specific string) string {
	if specific == "" {
		return coreSegment
	}
	return strings.ReplaceAll(escapeSegment(specific), "_", "%5F")
}

func specificFromSegment(seg string) (string, error) {
	if seg == coreSegment {
		return "", nil
	}
	return url.PathUnescape(seg)
}

// entityKey is /entities/<namespace>/<version>/<name>
func entityKey(id entity.Identity, base string) ds.Key {
	return entitiesPrefix.ChildString(namespaceSegment(id.SpecificNamespace(base))).
		ChildString(escapeSegment(id.Version)).
		ChildString(escapeSegment(id.Name))
}

func userKey(id string) ds.Key {
	return usersPrefix.ChildString(id)
}

func usernameKey(username string) ds.Key {
	return usernamesPrefix.ChildString(username)
}
