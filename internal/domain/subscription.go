package domain

// SubscriptionType is the tier a user is billed on.
type SubscriptionType string

const (
	SubscriptionFree    SubscriptionType = "free"
	SubscriptionPremium SubscriptionType = "premium"
)

// FreeMemoryLimit is the number of memories a free-tier user may own.
const FreeMemoryLimit = 100

// Valid reports whether t is a known tier.
func (t SubscriptionType) Valid() bool {
	return t == SubscriptionFree || t == SubscriptionPremium
}

// Features lists the capabilities unlocked by a tier.
type Features struct {
	UnlimitedMemories bool `json:"unlimited_memories"`
	AIFeatures        bool `json:"ai_features"`
	MultimediaStorage bool `json:"multimedia_storage"`
	Encryption        bool `json:"encryption"`
	CloudBackup       bool `json:"cloud_backup"`
}

// FeaturesFor returns the feature flags for a tier. Premium unlocks
// everything; free unlocks nothing.
func FeaturesFor(t SubscriptionType) Features {
	premium := t == SubscriptionPremium
	return Features{
		UnlimitedMemories: premium,
		AIFeatures:        premium,
		MultimediaStorage: premium,
		Encryption:        premium,
		CloudBackup:       premium,
	}
}

// MemoryLimit returns the memory cap for a tier, or nil when uncapped.
func MemoryLimit(t SubscriptionType) *int {
	if t == SubscriptionPremium {
		return nil
	}
	limit := FreeMemoryLimit
	return &limit
}

// CanCreateMemory reports whether a user on tier t who already owns count
// memories may create another one.
func CanCreateMemory(t SubscriptionType, count int) bool {
	limit := MemoryLimit(t)
	return limit == nil || count < *limit
}

// CanDowngrade reports whether a user owning count memories fits within the
// free tier.
func CanDowngrade(count int) bool {
	return count <= FreeMemoryLimit
}
