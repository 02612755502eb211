// Package core defines the domain model for recordfeed: training examples,
// their validation rules, and the MUS wire serializers used by record files
// and record stores.
package core
