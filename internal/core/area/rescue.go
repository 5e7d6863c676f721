package area

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/entity"
)

// RescueMethod is the extraction method of results produced by rescueNRF.
const RescueMethod = "nrf_rescue"

var rescueNRF = regexp.MustCompile(`(?i)NRF\s*:\s*(\d[\d.,]*)\s*m[²2]?`)

// rescueScan collects every "NRF: x m²" in the selected pages without
// identifiers. Rooms are numbered room_001, room_002, ... in document order.
func rescueScan(pages [][]string, selected []int) []entity.ExtractedRoom {
	var rooms []entity.ExtractedRoom
	for _, idx := range selected {
		text := strings.Join(pages[idx], "\n")
		for _, m := range rescueNRF.FindAllStringSubmatch(text, -1) {
			v, ok := germannum.Parse(m[1])
			if !ok || v < MinRoomArea || v > MaxRoomArea {
				continue
			}
			number := fmt.Sprintf("room_%03d", len(rooms)+1)
			rooms = append(rooms, newRoom(number, "", v, idx, m[0], "NRF:", false))
		}
	}
	return rooms
}
