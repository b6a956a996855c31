package service

import (
	"sort"
	"strings"

	"bjorkvang/internal/models"
)

// SpaceServiceImpl serves the configured space catalogue. The catalogue
// is static per process; reloading means restarting.
type SpaceServiceImpl struct {
	spaces []models.Space
	byName map[string]*models.Space
}

func NewSpaceService(spaces []models.Space) *SpaceServiceImpl {
	s := &SpaceServiceImpl{
		spaces: make([]models.Space, len(spaces)),
		byName: make(map[string]*models.Space, len(spaces)),
	}
	copy(s.spaces, spaces)
	sort.SliceStable(s.spaces, func(i, j int) bool {
		return s.spaces[i].SortOrder < s.spaces[j].SortOrder
	})
	for i := range s.spaces {
		s.byName[normalizeSpaceName(s.spaces[i].Name)] = &s.spaces[i]
	}
	return s
}

// GetActiveSpaces returns active spaces in display order.
func (s *SpaceServiceImpl) GetActiveSpaces() []models.Space {
	active := make([]models.Space, 0, len(s.spaces))
	for _, space := range s.spaces {
		if space.IsActive {
			active = append(active, space)
		}
	}
	return active
}

// GetSpaceByName looks a space up case-insensitively.
func (s *SpaceServiceImpl) GetSpaceByName(name string) (*models.Space, bool) {
	space, ok := s.byName[normalizeSpaceName(name)]
	if !ok {
		return nil, false
	}
	out := *space
	return &out, true
}

func normalizeSpaceName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
