package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/store"
)

type listStudentsQuery struct {
	Hostel  string        `form:"hostel" binding:"omitempty,oneof=block1 block2 block3 block4 block5 block6 block7 block8"`
	BedType model.BedType `form:"bedType" binding:"omitempty,oneof='1 bedded' '2 bedded' '3 bedded' '4 bedded'"`
}

// GetStudents handles GET /api/students, the directory listing used to
// pick a swap partner. Filterable by block and bed type.
func (h *Handler) GetStudents(c *gin.Context) {
	var q listStudentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	residents, err := h.store.ListResidents(c.Request.Context(), store.ResidentFilter{
		Block:   q.Hostel,
		BedType: q.BedType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]studentResponse, 0, len(residents))
	for i := range residents {
		responses = append(responses, toStudentResponse(&residents[i]))
	}
	c.JSON(http.StatusOK, gin.H{"students": responses})
}
