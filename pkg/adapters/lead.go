package adapters

import (
	"github.com/getmilo/milo/pkg/models/api"
	"github.com/getmilo/milo/pkg/models/domain"
	"github.com/getmilo/milo/pkg/models/store"
)

func MapLeadDomainToStore(l domain.Lead) store.Lead {
	return store.Lead{
		ID:           l.ID,
		Email:        l.Email,
		Source:       l.Source,
		Product:      l.Product,
		Timestamp:    l.Timestamp,
		Converted:    l.Converted,
		FollowUpSent: l.FollowUpSent,
	}
}

func MapLeadStoreToDomain(l store.Lead) domain.Lead {
	return domain.Lead{
		ID:           l.ID,
		Email:        l.Email,
		Source:       l.Source,
		Product:      l.Product,
		Timestamp:    l.Timestamp,
		Converted:    l.Converted,
		FollowUpSent: l.FollowUpSent,
	}
}

func MapLeadStatsStoreToDomain(s store.LeadStats) domain.LeadStats {
	return domain.LeadStats{Total: s.Total, Converted: s.Converted, FollowUpSent: s.FollowUpSent}
}

func MapLeadStatsDomainToApi(s domain.LeadStats) api.LeadCounters {
	return api.LeadCounters{Total: s.Total, Converted: s.Converted, FollowUpSent: s.FollowUpSent}
}

func MapLeadDomainToApi(l domain.Lead) api.Lead {
	return api.Lead{
		ID:           l.ID,
		Email:        l.Email,
		Source:       l.Source,
		Product:      l.Product,
		Timestamp:    l.Timestamp,
		Converted:    l.Converted,
		FollowUpSent: l.FollowUpSent,
	}
}
