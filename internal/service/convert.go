package service

import (
	"busline/internal/models"
	"busline/internal/response"
	"busline/internal/schedule"
)

func toLineResponse(line *models.Line) response.LineResponse {
	return response.LineResponse{
		ID:          line.ID,
		Name:        line.Name,
		CityID:      line.CityID,
		IsActive:    line.IsActive,
		ActiveBuses: line.ActiveBuses,
	}
}

func toSlotResponse(slot *models.Schedule) response.SlotResponse {
	return response.SlotResponse{
		ID:            slot.ID,
		LineID:        slot.LineID,
		LineName:      slot.Line.Name,
		ArrivalTime:   slot.ArrivalTime.String(),
		DepartureTime: slot.DepartureTime.String(),
		DayOfWeek:     int(slot.DayOfWeek),
		InterestCount: slot.InterestCount,
	}
}

func toSlotResponses(slots []models.Schedule) []response.SlotResponse {
	result := make([]response.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toSlotResponse(&slots[i]))
	}
	return result
}

func toOccurrenceResponse(occ *schedule.Occurrence) *response.SlotResponse {
	if occ == nil {
		return nil
	}
	resp := toSlotResponse(&occ.Slot)
	departsAt := occ.Departure
	resp.DepartsAt = &departsAt
	return &resp
}
