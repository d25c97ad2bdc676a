package pets

import "get-a-pet/internal/ports/auth"

// Reglas de autorización puras: nunca fallan, solo responden sí/no.

// CanModify: solo el dueño edita o borra.
func CanModify(p Pet, actor auth.Actor) bool {
	return actor.ID != "" && p.Owner.ID == actor.ID
}

// CanSchedule: no el dueño, y no quien ya es el adopter actual.
func CanSchedule(p Pet, actor auth.Actor) bool {
	return ScheduleDenial(p, actor) == nil
}

// ScheduleDenial separa los dos motivos de rechazo de CanSchedule.
func ScheduleDenial(p Pet, actor auth.Actor) error {
	if actor.ID == "" || p.Owner.ID == actor.ID {
		return ErrOwnPet
	}
	if p.HasAdopter() && p.Adopter.ID == actor.ID {
		return ErrAlreadyScheduled
	}
	return nil
}

// CanConclude: cualquier usuario que no sea el dueño. No exige ser el adopter agendado.
func CanConclude(p Pet, actor auth.Actor) bool {
	return actor.ID != "" && p.Owner.ID != actor.ID
}
